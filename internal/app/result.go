package app

// User-facing message catalog. Tests assert on exact wording, so these
// strings are part of the observable contract.
const (
	MsgEmailPasswordRequired = "Email and password are required"
	MsgInvalidCredentials    = "Invalid email or password"
	MsgAccountHardLocked     = "Account is locked due to multiple failed login attempts. Contact an administrator."
	MsgLockoutCooling        = "Too many failed login attempts. Please try again in %d minute(s)."
	MsgLockoutTriggered      = "Too many failed login attempts. Your account has been temporarily locked. Please try again later."
	MsgStoreError            = "Database error occurred"
	MsgEmailTaken            = "Email address already registered"
	MsgAccessDenied          = "Access denied. Admin privileges required."
	MsgSelfModification      = "You cannot modify your own account."
	MsgCurrentPassword       = "Current password is incorrect"
	MsgPasswordIncorrect     = "Password is incorrect"
)

// Result is the outcome of a public application operation: a success
// flag plus an optional human-readable message. Low-level storage errors
// never cross this boundary.
type Result struct {
	OK      bool
	Message string
}

func success() Result           { return Result{OK: true} }
func failure(msg string) Result { return Result{Message: msg} }
