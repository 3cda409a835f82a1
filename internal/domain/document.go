package domain

import "time"

// Document is the metadata record for one uploaded PDF. Content bytes
// live in the blob store under BlobName; the record never embeds them.
type Document struct {
	ID         string    `json:"id" db:"id"`
	Filename   string    `json:"filename" db:"filename"`
	MimeType   string    `json:"mimeType" db:"mime_type"`
	SizeBytes  int64     `json:"sizeBytes" db:"size_bytes"`
	StorageURL string    `json:"storageUrl" db:"storage_url"`
	BlobName   string    `json:"blobName" db:"blob_name"`
	IsCheck    bool      `json:"isCheck" db:"is_check"`
	UploadedBy *string   `json:"uploadedBy" db:"uploaded_by"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}
