package types

// CLIArgs represents the command-line arguments.
type CLIArgs struct {
	ConfigFile string
	Profile    string
	Region     string
	Bucket     string
	Prefix     string
	MaxWorkers int
	Months     int
	DryRun     bool
	SkipDelete bool
	Reconcile  bool
	LogFormat  string
	ReportName string
	ReportType []string
	Dir        string
}
