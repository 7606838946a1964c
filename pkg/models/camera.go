package models

// Camera is one entry of GET /cameras.
type Camera struct {
	ID       Token  `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Location string `json:"location" yaml:"location"`
	RTSPURL  string `json:"rtsp_url" yaml:"rtsp_url"`
	Status   string `json:"status" yaml:"status"`
}

// CameraIn is the body of POST /cameras.
type CameraIn struct {
	Name     string `json:"name" yaml:"name"`
	Location string `json:"location" yaml:"location"`
	RTSPURL  string `json:"rtsp_url" yaml:"rtsp_url"`
}
