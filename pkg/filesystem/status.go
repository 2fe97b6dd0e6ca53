package filesystem

// ImportStatus is the terminal outcome of one backup import.
type ImportStatus interface {
	isImportStatus()
}

// ImportSuccess means the backup was copied and the filesystem row exists.
type ImportSuccess struct{}

// URIUnselected means no backup source was staged when the import ran.
type URIUnselected struct{}

// ImportFailure carries the message of the error that stopped the import.
type ImportFailure struct {
	Reason string
}

func (ImportSuccess) isImportStatus() {}
func (URIUnselected) isImportStatus() {}
func (ImportFailure) isImportStatus() {}

func (ImportSuccess) String() string   { return "import succeeded" }
func (URIUnselected) String() string   { return "no backup selected" }
func (f ImportFailure) String() string { return "import failed: " + f.Reason }
