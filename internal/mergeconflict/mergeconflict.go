// Package mergeconflict detects singleton attributes that more than one
// paper in a merge carries, and validates the user's choice between them.
package mergeconflict

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/Kyz7/limitless/internal/apperr"
	"github.com/Kyz7/limitless/internal/models"
)

// Carrier is one paper's instance of an attribute. ID is the value the
// client submits to pick it.
type Carrier struct {
	ID    uint
	Label string
	Paper *models.Paper
}

// Attribute describes one singleton attribute a merged paper can hold
// only once. Collect returns the carriers in display order.
type Attribute struct {
	Name         string
	DiscardLabel string
	Collect      func(papers []*models.Paper) []Carrier
}

// Attributes are checked in this order.
var Attributes = []Attribute{
	{Name: "best_answer", DiscardLabel: "Unmark all best answers", Collect: collectBestAnswers},
	{Name: "poll", DiscardLabel: "Delete all polls", Collect: collectPolls},
}

func collectBestAnswers(papers []*models.Paper) []Carrier {
	var out []Carrier
	for _, p := range papers {
		if p.HasBestAnswer() {
			out = append(out, Carrier{ID: p.ID, Label: p.Title, Paper: p})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Label != out[j].Label {
			return out[i].Label < out[j].Label
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// collectPolls expects Poll to be preloaded on every paper.
func collectPolls(papers []*models.Paper) []Carrier {
	var out []Carrier
	for _, p := range papers {
		if p.Poll != nil {
			label := fmt.Sprintf("%s (%s)", p.Poll.Question, p.Title)
			out = append(out, Carrier{ID: p.Poll.ID, Label: label, Paper: p})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		qi, qj := out[i].Paper.Poll.Question, out[j].Paper.Poll.Question
		if qi != qj {
			return qi < qj
		}
		return out[i].ID < out[j].ID
	})
	return out
}

type handler struct {
	attr      Attribute
	carriers  []Carrier
	submitted any
	valid     bool
	picked    *Carrier
}

func (h *handler) conflict() bool {
	return len(h.carriers) > 1
}

// resolve applies a submitted choice. 0 discards every carrier; anything
// that is not a carrier id leaves the handler unresolved.
func (h *handler) resolve(choice any) {
	id, ok := parseChoice(choice)
	if !ok {
		return
	}
	if id == 0 {
		h.picked, h.valid = nil, true
		return
	}
	for i := range h.carriers {
		if h.carriers[i].ID == id {
			h.picked, h.valid = &h.carriers[i], true
			return
		}
	}
}

func (h *handler) choices() []apperr.Choice {
	out := []apperr.Choice{{ID: 0, Label: h.attr.DiscardLabel}}
	for _, c := range h.carriers {
		out = append(out, apperr.Choice{ID: c.ID, Label: c.Label})
	}
	return out
}

// MergeConflict is the resolution state of one merge request.
type MergeConflict struct {
	handlers  []*handler
	conflicts []*handler
}

// New inspects papers for every attribute and applies the choices in
// submission, keyed by attribute name. submission may be nil.
func New(papers []*models.Paper, submission map[string]any) *MergeConflict {
	mc := &MergeConflict{}
	for _, attr := range Attributes {
		h := &handler{attr: attr, carriers: attr.Collect(papers)}
		switch len(h.carriers) {
		case 0:
			h.valid = true
		case 1:
			h.valid, h.picked = true, &h.carriers[0]
		default:
			h.submitted = submission[attr.Name]
			h.resolve(h.submitted)
			mc.conflicts = append(mc.conflicts, h)
		}
		mc.handlers = append(mc.handlers, h)
	}
	return mc
}

func (mc *MergeConflict) IsMergeConflict() bool {
	return len(mc.conflicts) > 0
}

// ConflictingFields names the attributes carried by more than one paper.
func (mc *MergeConflict) ConflictingFields() []string {
	out := make([]string, 0, len(mc.conflicts))
	for _, h := range mc.conflicts {
		out = append(out, h.attr.Name)
	}
	return out
}

// IsValid reports whether every attribute has a resolution.
func (mc *MergeConflict) IsValid() bool {
	for _, h := range mc.handlers {
		if !h.valid {
			return false
		}
	}
	return true
}

// Validate returns nil once every conflict is resolved. When the client
// submitted a choice for any conflict it gets a *apperr.ValidationError
// naming the bad ones; otherwise a *apperr.ConflictUnresolvedError listing
// the choices per attribute, keyed by the plural attribute name.
func (mc *MergeConflict) Validate() error {
	if mc.IsValid() {
		return nil
	}

	answered := false
	for _, h := range mc.conflicts {
		if h.submitted != nil {
			answered = true
			break
		}
	}

	if answered {
		fields := map[string][]string{}
		for _, h := range mc.conflicts {
			if !h.valid || h.submitted == nil {
				fields[h.attr.Name] = []string{"Invalid choice."}
			}
		}
		return &apperr.ValidationError{Fields: fields}
	}

	resolutions := map[string][]apperr.Choice{}
	for _, h := range mc.conflicts {
		resolutions[h.attr.Name+"s"] = h.choices()
	}
	return &apperr.ConflictUnresolvedError{Resolutions: resolutions}
}

// Resolution maps each resolved attribute to its surviving carrier. A nil
// value means the attribute is dropped from the merged paper.
func (mc *MergeConflict) Resolution() map[string]*Carrier {
	out := map[string]*Carrier{}
	for _, h := range mc.handlers {
		if h.valid {
			out[h.attr.Name] = h.picked
		}
	}
	return out
}

// BestAnswerSource is the paper whose best answer survives, or nil.
func (mc *MergeConflict) BestAnswerSource() *models.Paper {
	if c := mc.Resolution()["best_answer"]; c != nil {
		return c.Paper
	}
	return nil
}

// Poll is the poll that survives, or nil.
func (mc *MergeConflict) Poll() *models.Poll {
	if c := mc.Resolution()["poll"]; c != nil {
		return c.Paper.Poll
	}
	return nil
}

// HasConflict reports whether the named attribute is in conflict.
func (mc *MergeConflict) HasConflict(name string) bool {
	for _, h := range mc.conflicts {
		if h.attr.Name == name {
			return true
		}
	}
	return false
}

func parseChoice(v any) (uint, bool) {
	switch n := v.(type) {
	case uint:
		return n, true
	case int:
		return uint(n), n >= 0
	case int64:
		return uint(n), n >= 0
	case float64:
		if n < 0 || n != math.Trunc(n) {
			return 0, false
		}
		return uint(n), true
	case json.Number:
		return parseChoice(n.String())
	case string:
		id, err := strconv.ParseUint(n, 10, 64)
		if err != nil {
			return 0, false
		}
		return uint(id), true
	}
	return 0, false
}
