package model

import "time"

// RunSummary is the persisted outcome of one daily check run
type RunSummary struct {
	ID              string // uuid
	RunDate         time.Time
	TotalParsed     int
	Unlicensed      int
	Added           int
	Removed         int
	StatusChanged   int
	ClassChanged    int
	CommentsChanged int
	UrgentExpiry    int
	MedicalDue      int
	ParseErrors     int
	Baseline        bool // true when no previous snapshot existed
	ReportSent      bool
	UploadPrepared  bool
	CreatedAt       time.Time
}
