package views

import "strings"

// Endpoint is one row of the status page.
type Endpoint struct {
	Method string
	Path   string
	MsgID  string
}

// Endpoints lists the public routes shown on the status page.
var Endpoints = []Endpoint{
	{"POST", "/api/generate-questions", "EndpointGenerate"},
	{"POST", "/api/parse-syllabus", "EndpointParse"},
	{"POST", "/api/extract-syllabus", "EndpointExtract"},
	{"GET", "/healthz", "EndpointHealth"},
}

func onOff(enabled bool) string {
	if enabled {
		return "Enabled"
	}
	return "Disabled"
}

func required(set bool) string {
	if set {
		return "Required"
	}
	return "NotRequired"
}

func origins(list []string) string {
	if len(list) == 0 {
		return "*"
	}
	return strings.Join(list, ", ")
}
