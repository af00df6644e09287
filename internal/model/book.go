package model

import "time"

// Book is a catalog entry: the metadata row for one uploaded file.
// FilePath is the private storage key of the file, never a public URL.
type Book struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Description   string    `json:"description"`
	Tags          []string  `json:"tags"`
	FilePath      string    `json:"file_path"`
	FileName      string    `json:"file_name"`
	FileSize      int64     `json:"file_size"`
	UploadDate    time.Time `json:"upload_date"`
	DownloadCount int64     `json:"download_count"`
	UploadedBy    string    `json:"uploaded_by,omitempty"`
}
