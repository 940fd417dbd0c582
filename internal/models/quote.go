package models

type Quote struct {
	Quote  string `json:"quote"`
	Author string `json:"author"`
}
