package models

// ArchiveItem maps a file's archive-relative key to where it lives after the move.
type ArchiveItem struct {
	RelativeKey  string `json:"relative_key" yaml:"relative_key"`
	FinalPath    string `json:"final_path" yaml:"final_path"`
	OriginalPath string `json:"original_path" yaml:"original_path"`
	Size         int64  `json:"size" yaml:"size"`
}

// EntryAge is one top-level entry of the root as shown in the shortlist report.
type EntryAge struct {
	Path    string `json:"path" yaml:"path"`
	IsDir   bool   `json:"is_dir" yaml:"is_dir"`
	AgeDays *int   `json:"age_days" yaml:"age_days"`
}

type ArchiveResult struct {
	ArchiveName      string        `json:"archive_name" yaml:"archive_name"`
	RootPath         string        `json:"root_path" yaml:"root_path"`
	ArchiveRoot      string        `json:"archive_root" yaml:"archive_root"`
	BucketName       string        `json:"bucket_name" yaml:"bucket_name"`
	ThresholdDays    int           `json:"threshold_days" yaml:"threshold_days"`
	ArchivedEntries  []EntryAge    `json:"archived_entries" yaml:"archived_entries"`
	IgnoredEntries   []EntryAge    `json:"ignored_entries" yaml:"ignored_entries"`
	ShortlistedFiles int           `json:"shortlisted_files" yaml:"shortlisted_files"`
	Items            []ArchiveItem `json:"items" yaml:"items"`
	TotalFiles       int           `json:"total_files" yaml:"total_files"`
	TotalSizeBytes   int64         `json:"total_size_bytes" yaml:"total_size_bytes"`
	TotalSizeHuman   string        `json:"total_size_human" yaml:"total_size_human"`
	MoveFailures     []string      `json:"move_failures,omitempty" yaml:"move_failures,omitempty"`
	UploadFailures   []string      `json:"upload_failures,omitempty" yaml:"upload_failures,omitempty"`
	Uploaded         bool          `json:"uploaded" yaml:"uploaded"`
	LogWritten       bool          `json:"log_written" yaml:"log_written"`
	DryRun           bool          `json:"dry_run" yaml:"dry_run"`
	OperationTime    string        `json:"operation_time" yaml:"operation_time"`
	Duration         string        `json:"duration" yaml:"duration"`
}

type ReconcileResult struct {
	ArchiveName    string   `json:"archive_name" yaml:"archive_name"`
	ArchiveRoot    string   `json:"archive_root" yaml:"archive_root"`
	BucketName     string   `json:"bucket_name" yaml:"bucket_name"`
	Checked        int      `json:"checked" yaml:"checked"`
	AlreadyPresent int      `json:"already_present" yaml:"already_present"`
	Uploaded       []string `json:"uploaded" yaml:"uploaded"`
	Failed         []string `json:"failed,omitempty" yaml:"failed,omitempty"`
	OperationTime  string   `json:"operation_time" yaml:"operation_time"`
	Duration       string   `json:"duration" yaml:"duration"`
}
