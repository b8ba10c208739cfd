package entity

// Incident is one parsed line of the daily incident summary.
type Incident struct {
	Time     string `json:"incident_time"`
	Number   string `json:"incident_number"`
	Location string `json:"incident_location"`
	Nature   string `json:"nature"`
	ORI      string `json:"incident_ori"`
}

// NatureCount is one row of the per-nature aggregate.
type NatureCount struct {
	Nature string `json:"nature"`
	Count  int    `json:"count"`
}
