package gap

import (
	"sort"

	"github.com/kilianp07/routegap/core/model"
)

// Transfer moves whole vehicles from a surplus route to a shortage route.
type Transfer struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Vehicles int    `json:"vehicles"`
}

// Plan is a fleet-wide reallocation proposal.
type Plan struct {
	Transfers []Transfer `json:"transfers"`
	// Unmet counts vehicles still needed once every spare vehicle is used.
	Unmet int `json:"unmet"`
	// Idle counts spare vehicles no shortage route asked for.
	Idle int `json:"idle"`
}

type slot struct {
	route    string
	vehicles int
}

// PlanReallocation matches spare vehicles of surplus routes against the needs
// of shortage routes. Larger donors and larger needs are served first; ties
// keep input order.
func PlanReallocation(routes []model.AnalyzedRoute) Plan {
	var donors, receivers []slot
	for _, r := range routes {
		if r.Suggestion.Vehicles == 0 {
			continue
		}
		switch r.Suggestion.Action {
		case model.ActionReallocate:
			donors = append(donors, slot{r.RouteName, r.Suggestion.Vehicles})
		case model.ActionAdd:
			receivers = append(receivers, slot{r.RouteName, r.Suggestion.Vehicles})
		}
	}
	byVehicles := func(s []slot) {
		sort.SliceStable(s, func(i, j int) bool { return s[i].vehicles > s[j].vehicles })
	}
	byVehicles(donors)
	byVehicles(receivers)

	p := Plan{Transfers: []Transfer{}}
	d, r := 0, 0
	for d < len(donors) && r < len(receivers) {
		n := min(donors[d].vehicles, receivers[r].vehicles)
		p.Transfers = append(p.Transfers, Transfer{From: donors[d].route, To: receivers[r].route, Vehicles: n})
		donors[d].vehicles -= n
		receivers[r].vehicles -= n
		if donors[d].vehicles == 0 {
			d++
		}
		if receivers[r].vehicles == 0 {
			r++
		}
	}
	for ; d < len(donors); d++ {
		p.Idle += donors[d].vehicles
	}
	for ; r < len(receivers); r++ {
		p.Unmet += receivers[r].vehicles
	}
	return p
}
