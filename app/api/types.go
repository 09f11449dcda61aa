package api

type StatusResponse struct {
	Version string       `json:"version"`
	LastRun *RunResponse `json:"last_run,omitempty"`
}

type RunResponse struct {
	ID               string `json:"id"`
	StartedAt        string `json:"started_at"`
	FinishedAt       string `json:"finished_at"`
	Status           string `json:"status"`
	Extracted        int    `json:"extracted"`
	OutsideWindow    int    `json:"outside_window"`
	RankRejected     int    `json:"rank_rejected"`
	Ignored          int    `json:"ignored"`
	CategoryRejected int    `json:"category_rejected"`
	Duplicates       int    `json:"duplicates"`
	Posted           int    `json:"posted"`
	Error            string `json:"error,omitempty"`
}

type PodiumResponse struct {
	EventName string `json:"event_name"`
	EventURL  string `json:"event_url"`
	Rider     string `json:"rider"`
	Rank      int    `json:"rank"`
	Category  string `json:"category"`
	ResultAt  string `json:"result_at"`
}
