package flows

// Deps groups flow dependency sets. Root engine builds this once and
// delegates session methods to the matching flow implementation.
type Deps struct {
	Login        LoginDeps
	Signup       SignupDeps
	Logout       LogoutDeps
	Resolve      ResolveDeps
	Verification VerificationDeps
}
