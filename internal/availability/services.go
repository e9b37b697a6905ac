package availability

import "strings"

// Service pairs a user-facing streaming service name with its availability
// provider code.
type Service struct {
	Name string
	Code string
}

var serviceTable = []Service{
	{Name: "Netflix", Code: "netflix"},
	{Name: "Prime", Code: "prime"},
	{Name: "Disney", Code: "disney"},
	{Name: "HBO Max", Code: "hbo"},
	{Name: "Hulu", Code: "hulu"},
	{Name: "Peacock", Code: "peacock"},
	{Name: "Paramount", Code: "paramount"},
	{Name: "Starz", Code: "starz"},
	{Name: "Showtime", Code: "showtime"},
	{Name: "Apple TV", Code: "apple"},
	{Name: "MUBI", Code: "mubi"},
}

// Services returns the supported services in display order.
func Services() []Service {
	out := make([]Service, len(serviceTable))
	copy(out, serviceTable)
	return out
}

// ServiceCode maps a service display name to its provider code. Matching is
// exact after trimming surrounding whitespace.
func ServiceCode(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, svc := range serviceTable {
		if svc.Name == name {
			return svc.Code, true
		}
	}
	return "", false
}

// ServiceNames returns the supported display names in order.
func ServiceNames() []string {
	names := make([]string, 0, len(serviceTable))
	for _, svc := range serviceTable {
		names = append(names, svc.Name)
	}
	return names
}
