// Package routedata holds the static catalog of pre-recorded driving
// test routes served by the token redemption endpoint. The external map
// addresses live only here and in the 302 Location header; they are
// never written into a JSON response body.
package routedata

// Route is one pre-recorded test route hosted on the external mapping
// provider.
type Route struct {
	ID     int
	Centre string
	Name   string
	MapURL string
}

var routes = map[int]Route{
	1:  {ID: 1, Centre: "Naas", Name: "Naas route 1 (Sallins Road)", MapURL: "https://www.google.com/maps/d/viewer?mid=1rn-naas-01"},
	2:  {ID: 2, Centre: "Naas", Name: "Naas route 2 (Kilcullen Road)", MapURL: "https://www.google.com/maps/d/viewer?mid=1rn-naas-02"},
	3:  {ID: 3, Centre: "Naas", Name: "Naas route 3 (Blessington Road)", MapURL: "https://www.google.com/maps/d/viewer?mid=1rn-naas-03"},
	4:  {ID: 4, Centre: "Tallaght", Name: "Tallaght route 1 (Greenhills)", MapURL: "https://www.google.com/maps/d/viewer?mid=1rn-tall-01"},
	5:  {ID: 5, Centre: "Tallaght", Name: "Tallaght route 2 (Old Bawn)", MapURL: "https://www.google.com/maps/d/viewer?mid=1rn-tall-02"},
	6:  {ID: 6, Centre: "Finglas", Name: "Finglas route 1 (Jamestown Road)", MapURL: "https://www.google.com/maps/d/viewer?mid=1rn-fing-01"},
	7:  {ID: 7, Centre: "Finglas", Name: "Finglas route 2 (St Margaret's)", MapURL: "https://www.google.com/maps/d/viewer?mid=1rn-fing-02"},
	8:  {ID: 8, Centre: "Cork", Name: "Cork route 1 (Wilton)", MapURL: "https://www.google.com/maps/d/viewer?mid=1rn-cork-01"},
	9:  {ID: 9, Centre: "Cork", Name: "Cork route 2 (Model Farm Road)", MapURL: "https://www.google.com/maps/d/viewer?mid=1rn-cork-02"},
	10: {ID: 10, Centre: "Mullingar", Name: "Mullingar route 1 (Delvin Road)", MapURL: "https://www.google.com/maps/d/viewer?mid=1rn-mull-01"},
}

// Lookup returns the route with the given id.
func Lookup(id int) (Route, bool) {
	r, ok := routes[id]
	return r, ok
}
