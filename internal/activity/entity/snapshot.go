package entity

// Snapshot is the serialized dataset of one session plus what is needed to
// describe it without decoding the blob.
type Snapshot struct {
	SessionID string
	Revision  int64
	Blob      []byte
	UpdatedAt int64

	// Stats of the ingest that produced Blob
	Files   int
	Rows    int
	Columns int
}
