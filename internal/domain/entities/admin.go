package entities

// AdminCredential is one entry of the static admin credentials file
type AdminCredential struct {
	ID       string `json:"id" yaml:"id"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	Name     string `json:"name" yaml:"name"`
	Role     string `json:"role" yaml:"role"`
}

// AdminSession is returned to the dashboard after a successful login. The token
// is opaque and is not tracked by the server.
type AdminSession struct {
	Token string `json:"token"`
	ID    string `json:"id"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}
