// Package workflow enforces the client-information gate on unit status changes.
package workflow

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"inventory-backend/internal/model"
)

var (
	// ErrInvalidStatus is returned for a status outside model.Statuses.
	ErrInvalidStatus = errors.New("unknown status")
	// ErrClientInfoRequired is wrapped by every ClientInfoError.
	ErrClientInfoRequired = errors.New("client information is required")
	// ErrEmptySelection is returned by a bulk change over no units.
	ErrEmptySelection = errors.New("no units selected")
)

// ClientInfoError reports a transition blocked by missing client information.
type ClientInfoError struct {
	PropertyID string
	UnitNumber string
	Status     model.Status
	Missing    []string
}

func (e *ClientInfoError) Error() string {
	return fmt.Sprintf("unit %s: moving to %s requires %s", e.UnitNumber, e.Status, strings.Join(e.Missing, ", "))
}

func (e *ClientInfoError) Unwrap() error { return ErrClientInfoRequired }

// BulkError collects every unit that blocked a bulk transition.
type BulkError struct {
	Failures []*ClientInfoError
}

func (e *BulkError) Error() string {
	msgs := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		msgs[i] = f.Error()
	}
	return fmt.Sprintf("%d of the selected units cannot change status: %s", len(e.Failures), strings.Join(msgs, "; "))
}

func (e *BulkError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}

// Transition moves p to target. Reserved, Under Offer and Sold need valid client
// information: info when supplied, otherwise whatever is already attached.
// Available and Developer Hold drop client information. Sold stamps the sold date
// once; any other status clears it. On error p is left untouched.
func Transition(p *model.Property, target model.Status, info *model.ClientInfo, now time.Time) error {
	status, ok := model.ParseStatus(string(target))
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, target)
	}

	next := *p
	if status.RequiresClientInfo() {
		attached := info
		if attached == nil {
			attached = p.ClientInfo
		}
		if missing := attached.MissingFields(); len(missing) > 0 {
			return &ClientInfoError{PropertyID: p.ID, UnitNumber: p.UnitNumber, Status: status, Missing: missing}
		}
		ci := normalize(*attached)
		if info != nil || ci.AttachedAt.IsZero() {
			ci.AttachedAt = now.UTC()
		}
		next.ClientInfo = &ci
	} else {
		next.ClientInfo = nil
	}

	if status == model.StatusSold {
		if next.SoldDate == nil {
			d := dateOf(now)
			next.SoldDate = &d
		}
	} else {
		next.SoldDate = nil
	}

	next.Status = status
	*p = next
	return nil
}

// BulkTransition applies target to every unit or to none. Each unit takes its
// own entry from infos; shared is used for units without one only when
// applyShared is set.
func BulkTransition(props []model.Property, target model.Status, infos map[string]*model.ClientInfo, shared *model.ClientInfo, applyShared bool, now time.Time) ([]model.Property, error) {
	if len(props) == 0 {
		return nil, ErrEmptySelection
	}
	out := make([]model.Property, len(props))
	copy(out, props)

	var failures []*ClientInfoError
	for i := range out {
		info := infos[out[i].ID]
		if info == nil && applyShared {
			info = shared
		}
		if err := Transition(&out[i], target, info, now); err != nil {
			var cie *ClientInfoError
			if errors.As(err, &cie) {
				failures = append(failures, cie)
				continue
			}
			return nil, err
		}
	}
	if len(failures) > 0 {
		return nil, &BulkError{Failures: failures}
	}
	return out, nil
}

func normalize(ci model.ClientInfo) model.ClientInfo {
	ci.AgencyName = strings.TrimSpace(ci.AgencyName)
	ci.AgentName = strings.TrimSpace(ci.AgentName)
	ci.AgentEmail = strings.TrimSpace(ci.AgentEmail)
	ci.AgentPhone = strings.TrimSpace(ci.AgentPhone)
	ci.ClientName = strings.TrimSpace(ci.ClientName)
	ci.ClientEmail = strings.TrimSpace(ci.ClientEmail)
	ci.ClientPhone = strings.TrimSpace(ci.ClientPhone)
	return ci
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
