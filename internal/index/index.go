package index

// DocumentIndex is the navigation index surface the service layer
// depends on.
type DocumentIndex interface {
	UpsertDocument(d DocumentRow, body, html string) error
	DeleteDocument(path string) error
	GetDocument(key string) (*DocumentDetail, error)
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	Chronological(limit, offset int) ([]DocumentRow, int, error)
	ChronologicalAll() ([]DocumentRow, error)
	ByTag(tag string, limit, offset int) ([]DocumentRow, int, error)
	Tags() ([]TagCount, error)
	Pages() ([]DocumentRow, error)
	Problems() ([]Problem, error)
	RecordProblem(path, reason string) error
	ClearProblem(path string) error
	Close() error
}

// Verify *DB satisfies DocumentIndex at compile time.
var _ DocumentIndex = (*DB)(nil)

// Renderer turns a Markdown body into HTML. Declared here so the index
// does not depend on the render package.
type Renderer interface {
	Render(body []byte) (string, error)
}
