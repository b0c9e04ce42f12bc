package rbac

const (
	PermSubmissionsList   = "submissions:list"
	PermSubmissionsExport = "submissions:export"
	PermSubmissionsRetry  = "submissions:retry"
	PermSessionsList      = "sessions:list"
	PermBankLint          = "bank:lint"
	PermBankReload        = "bank:reload"
	PermLocksRelease      = "locks:release"
	PermEventsRead        = "events:read"
)

// Perms is every permission an operator route checks.
var Perms = []string{
	PermSubmissionsList,
	PermSubmissionsExport,
	PermSubmissionsRetry,
	PermSessionsList,
	PermBankLint,
	PermBankReload,
	PermLocksRelease,
	PermEventsRead,
}

// RoleGrants is the default policy. Proctors watch a sitting; admins manage content.
var RoleGrants = map[string][]string{
	"proctor": {
		PermSubmissionsList,
		PermSubmissionsExport,
		PermSessionsList,
		PermBankLint,
		PermLocksRelease,
	},
	"admin": {"*"},
}
