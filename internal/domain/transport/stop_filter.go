package transport

import (
	"fmt"
	"regexp"

	"github.com/sakhatrip/sakhatrip-go/internal/domain/reference"
)

var (
	// "virtual-stop-" with nothing but dashes after the prefix means id
	// generation ran on an empty city name
	emptyVirtualIDPattern = regexp.MustCompile(`^virtual-stop-+$`)

	dashRunPattern = regexp.MustCompile(`-{3,}`)
)

// RejectedStop pairs a filtered-out stop with the reason it was dropped
type RejectedStop struct {
	Record StopRecord
	Reason string
}

// AdmitStop checks the graph admission rules for a single stop. A nil
// return means the stop may become a graph node.
func AdmitStop(r StopRecord, dir *reference.Directory) error {
	if r.Name == "" {
		return fmt.Errorf("stop %s has empty name", r.ID)
	}
	if r.CityID == "" {
		return fmt.Errorf("stop %s has empty cityId", r.ID)
	}
	if !dir.Contains(r.CityID) {
		return fmt.Errorf("stop %s cityId %q is not in the unified reference", r.ID, r.CityID)
	}
	if emptyVirtualIDPattern.MatchString(r.ID) {
		return fmt.Errorf("stop id %q is a degenerate virtual id", r.ID)
	}
	if dashRunPattern.MatchString(r.ID) {
		return fmt.Errorf("stop id %q contains a run of 3+ dashes", r.ID)
	}
	if LooksLikeFerryTerminal(r) && r.Metadata["type"] != string(StopTypeFerryTerminal) {
		return fmt.Errorf("stop %s is ferry-like by keyword but not tagged ferry_terminal", r.ID)
	}
	return nil
}

// FilterAdmissibleStops splits stop records into graph-admissible ones and
// rejections with reasons.
func FilterAdmissibleStops(records []StopRecord, dir *reference.Directory) ([]StopRecord, []RejectedStop) {
	var admitted []StopRecord
	var rejected []RejectedStop
	for _, r := range records {
		if err := AdmitStop(r, dir); err != nil {
			rejected = append(rejected, RejectedStop{Record: r, Reason: err.Error()})
			continue
		}
		admitted = append(admitted, r)
	}
	return admitted, rejected
}
