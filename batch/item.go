package batch

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mensylisir/taskcores/common"
	"github.com/mensylisir/taskcores/status"
)

// Item is one candidate unit of work for the external checker.
type Item struct {
	ID         string
	Status     string
	Attributes map[string]string
}

// Attribute returns the named attribute value, or "" when unset.
func (it Item) Attribute(name string) string {
	return it.Attributes[name]
}

// Filter classifies candidate items before dispatch. Items missing a
// required field are reported as insufficient-information through the
// item-status collaborator and excluded; items whose status is the
// not-yet-checked sentinel (or absent) are transitioned to in-progress and
// included; everything else is included untouched, presumed already in
// flight or terminal from a prior run.
type Filter struct {
	items    status.ItemStatus
	required []string
}

// NewFilter creates a filter over the given required field names.
func NewFilter(items status.ItemStatus, required ...string) *Filter {
	f := &Filter{items: items}
	f.required = make([]string, len(required))
	copy(f.required, required)
	return f
}

// Apply returns the items eligible for dispatch. Each ineligible item is
// reported exactly once, without ever reaching the checker.
func (f *Filter) Apply(items []Item, log *logrus.Entry) []Item {
	eligible := make([]Item, 0, len(items))
	for _, it := range items {
		if missing := f.missingFields(it); len(missing) > 0 {
			log.Warnf("Item %s is missing required fields %s: reporting insufficient information.",
				it.ID, strings.Join(missing, ", "))
			f.items.Transition(it.ID, common.ItemStatusInsufficientInfo)
			continue
		}
		if it.Status == "" || it.Status == common.ItemStatusNotChecked {
			f.items.Transition(it.ID, common.ItemStatusInProgress)
		}
		eligible = append(eligible, it)
	}
	return eligible
}

func (f *Filter) missingFields(it Item) []string {
	var missing []string
	for _, name := range f.required {
		if strings.TrimSpace(it.Attribute(name)) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}
