package domain

// ScanResult is the observation of a single probed host. It is produced
// by one scan pass and consumed immediately by reconciliation; it is
// never persisted.
type ScanResult struct {
	IP    string `json:"ip"`
	MAC   string `json:"mac,omitempty"`
	Alive bool   `json:"alive"`
}

// ScanReport summarizes one scan-and-reconcile pass.
type ScanReport struct {
	Subnet           string       `json:"subnet,omitempty"`
	HostsResponding  int          `json:"hosts_responding"`
	AssetsMatched    int          `json:"assets_matched"`
	MissingRecovered int          `json:"missing_recovered"`
	UnknownHosts     int          `json:"unknown_hosts"`
	Unknown          []ScanResult `json:"unknown,omitempty"`
}

// OverdueReport summarizes one run of the overdue assignment check.
type OverdueReport struct {
	OverdueSeen          int `json:"overdue_seen"`
	NotificationsCreated int `json:"notifications_created"`
	EmailsSent           int `json:"emails_sent"`
}
