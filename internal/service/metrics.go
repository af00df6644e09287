package service

import "github.com/prometheus/client_golang/prometheus"

// Upload results recorded on bookshelf_uploads_total.
const (
	resultOK           = "ok"
	resultAuthRequired = "auth_required"
	resultBlobError    = "blob_error"
	resultDBError      = "db_error"
)

// Metrics holds the catalog's domain counters.
type Metrics struct {
	uploads       *prometheus.CounterVec
	downloads     prometheus.Counter
	orphanedBlobs *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them on reg. A nil reg
// leaves them unregistered, which is what tests usually want.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookshelf_uploads_total",
				Help: "Book uploads by result.",
			},
			[]string{"result"},
		),
		downloads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bookshelf_downloads_total",
			Help: "Signed download URLs issued.",
		}),
		orphanedBlobs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookshelf_orphaned_blobs_total",
				Help: "Blobs left behind after a failed cleanup delete.",
			},
			[]string{"op"},
		),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.uploads, m.downloads, m.orphanedBlobs} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}
