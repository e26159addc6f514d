// internal/stdtable/dimensions.go
package stdtable

// Standard table numbers handled here.
const (
	GeneralConfigID = 0
	ModeStatusID    = 3
	PendingStatusID = 4
)

// Fixed prefix widths.
const (
	GeneralConfigPrefix = 19
	PendingEntrySize    = 7
)

// Dimensions are the counts decoded from table 0 that size other tables.
// They are handed to dependents by value; a dependent never reaches back
// into table 0.
type Dimensions struct {
	StdTables int // DIM_STD_TBLS_USED, bytes
	MfgTables int // DIM_MFG_TBLS_USED, bytes
	StdProcs  int // DIM_STD_PROC_USED, bytes
	MfgProcs  int // DIM_MFG_PROC_USED, bytes
	MfgStatus int // DIM_MFG_STATUS_USED, bytes
	Pending   int // NBR_PENDING, entries
}

// GeneralConfigSize is 19 + 2a + 2b + c + d.
func (d Dimensions) GeneralConfigSize() int {
	return GeneralConfigPrefix + 2*d.StdTables + 2*d.MfgTables + d.StdProcs + d.MfgProcs
}

// ModeStatusSize is 4 + e.
func (d Dimensions) ModeStatusSize() int {
	return 4 + d.MfgStatus
}

// PendingStatusSize is a + b + 1 + 7p.
func (d Dimensions) PendingStatusSize() int {
	return d.StdTables + d.MfgTables + 1 + PendingEntrySize*d.Pending
}
