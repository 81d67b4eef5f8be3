package enums

// LookupSource records where an identity lookup was answered from.
type LookupSource string

const (
	LookupSourceCache    LookupSource = "CACHE"
	LookupSourceRegistry LookupSource = "REGISTRY"
)

// LookupStatus records the outcome of an identity lookup attempt.
type LookupStatus string

const (
	LookupStatusSuccess LookupStatus = "SUCCESS"
	LookupStatusFailure LookupStatus = "FAILURE"
)
