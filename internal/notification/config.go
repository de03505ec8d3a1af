package notification

// SMTPConfig holds connection parameters for the SMTP transport.
type SMTPConfig struct {
	Host       string `json:"host" yaml:"host"`
	Port       int    `json:"port" yaml:"port"`
	Username   string `json:"username" yaml:"username"`
	Password   string `json:"password" yaml:"password"`
	Encryption string `json:"encryption" yaml:"encryption"` // "none", "starttls", "ssl_tls"
}
