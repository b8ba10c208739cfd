package constants

// DefaultNoiseSubstrings are the header fragments that mark a line of the
// daily incident summary as structural rather than data.
var DefaultNoiseSubstrings = []string{
	"Incident Number",
	"NORMAN POLICE",
}

const (
	DefaultUserAgent    = "Mozilla/5.0"
	DefaultDownloadPath = "./tmp/incident_report.pdf"
	DefaultLogFile      = "incident_parsing.log"
	DefaultSQLiteDSN    = "file:resources/normanpd.db?_pragma=foreign_keys(1)"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)
