package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"rescueDispatch/internal/domain"
	"rescueDispatch/pkg/e"

	"github.com/google/uuid"
)

func TestLifecycle_Create_FallbackCenterAndTriage(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	inc := f.create(t, galleRoadReport())

	if inc.Priority != domain.PriorityEmergency || !inc.IsEmergency {
		t.Fatalf("triage = (%s, %t), want (Emergency, true)", inc.Priority, inc.IsEmergency)
	}
	if inc.Status != domain.StatusPendingAssignment {
		t.Fatalf("status = %s", inc.Status)
	}
	if inc.Location.Coordinates != fallbackCenter || !inc.Location.Approximate {
		t.Fatalf("coordinates = %+v approximate=%t, want fallback", inc.Location.Coordinates, inc.Location.Approximate)
	}
	if len(inc.Timeline) != 1 || inc.Timeline[0].Action != domain.ActionCreated {
		t.Fatalf("timeline = %+v", inc.Timeline)
	}
	if !strings.HasPrefix(inc.RequestID, "RSC-") || len(inc.RequestID) != len("RSC-20060102-ABCDEF") {
		t.Fatalf("request id = %q", inc.RequestID)
	}
	if inc.Reporter.AccountID != reporter.ID {
		t.Fatalf("reporter account = %q", inc.Reporter.AccountID)
	}
	if inc.Assignment != nil || inc.Completion != nil {
		t.Fatalf("new incident carries assignment/completion")
	}
	mustInvariants(t, inc)

	got := f.emitter.types()
	if len(got) != 1 || got[0] != domain.NotificationIncidentEmergency {
		t.Fatalf("notifications = %v", got)
	}
	if f.emitter.events[0].Priority != domain.PriorityEmergency || f.emitter.events[0].RelatedIncidentID != inc.ID {
		t.Fatalf("notification context = %+v", f.emitter.events[0])
	}
}

func TestLifecycle_Create_InvalidCoordinatesFallBack(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	req := galleRoadReport()
	req.Condition = "stable"
	req.Coordinates = &domain.CoordinatesInput{Lat: f64ptr(123), Lng: f64ptr(79.8)}

	inc := f.create(t, req)
	if inc.Location.Coordinates != fallbackCenter {
		t.Fatalf("coordinates = %+v, want fallback", inc.Location.Coordinates)
	}
	if inc.Priority != domain.PriorityNormal || inc.IsEmergency {
		t.Fatalf("triage = (%s, %t), want (Normal, false)", inc.Priority, inc.IsEmergency)
	}
	if got := f.emitter.types(); len(got) != 1 || got[0] != domain.NotificationIncidentCreated {
		t.Fatalf("notifications = %v", got)
	}
}

func TestLifecycle_Create_Validation(t *testing.T) {
	t.Parallel()

	cases := map[string]func(r *domain.CreateIncidentRequest){
		"no address and no coordinates": func(r *domain.CreateIncidentRequest) { r.Address = "" },
		"no address and bad coordinates": func(r *domain.CreateIncidentRequest) {
			r.Address = ""
			r.Coordinates = &domain.CoordinatesInput{Lat: f64ptr(95), Lng: f64ptr(10)}
		},
		"missing condition":        func(r *domain.CreateIncidentRequest) { r.Condition = "" },
		"unknown condition":        func(r *domain.CreateIncidentRequest) { r.Condition = "zombie" },
		"missing reporter phone":   func(r *domain.CreateIncidentRequest) { r.ReporterPhone = "" },
		"missing reporter name":    func(r *domain.CreateIncidentRequest) { r.ReporterName = "" },
		"malformed reporter email": func(r *domain.CreateIncidentRequest) { r.ReporterEmail = "not-an-email" },
	}

	for name, mutate := range cases {
		name, mutate := name, mutate
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)

			req := galleRoadReport()
			mutate(&req)
			_, err := f.svc.Lifecycle.Create(context.Background(), reporter, req)
			if !errors.Is(err, e.ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
			if f.store.Len() != 0 {
				t.Fatalf("store has %d incidents after failed create", f.store.Len())
			}
			if len(f.emitter.types()) != 0 {
				t.Fatalf("notification emitted for failed create")
			}
		})
	}
}

func TestLifecycle_Lookup(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	inc := f.create(t, galleRoadReport())
	ctx := context.Background()

	byID, err := f.svc.Lifecycle.Lookup(ctx, inc.ID.String())
	if err != nil || byID.ID != inc.ID {
		t.Fatalf("Lookup(uuid) = %v, %v", byID, err)
	}
	byRef, err := f.svc.Lifecycle.Lookup(ctx, strings.ToLower(inc.RequestID))
	if err != nil || byRef.ID != inc.ID {
		t.Fatalf("Lookup(request id) = %v, %v", byRef, err)
	}
	if _, err := f.svc.Lifecycle.Lookup(ctx, "RSC-19990101-000000"); !errors.Is(err, e.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestLifecycle_List_EmptyIsNotAnError(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	status := domain.StatusRescued
	resp, err := f.svc.Lifecycle.List(context.Background(), domain.IncidentFilter{Status: &status})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if resp.Incidents == nil || len(resp.Incidents) != 0 || resp.Total != 0 {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.Page != 1 || resp.Limit != 20 {
		t.Fatalf("pagination = %d/%d", resp.Page, resp.Limit)
	}
}

func TestLifecycle_Transition_RejectsUnreachableEdges(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	inc := f.create(t, galleRoadReport())
	ctx := context.Background()

	for _, target := range []domain.IncidentStatus{domain.StatusRescued, domain.StatusDogPickedUp, domain.StatusDriverAssigned, domain.StatusPendingAssignment} {
		_, err := f.svc.Lifecycle.Transition(ctx, operator, inc.ID, domain.TransitionRequest{Status: target})
		if !errors.Is(err, e.ErrInvalidTransition) {
			t.Fatalf("Transition(%s) err = %v, want ErrInvalidTransition", target, err)
		}
	}

	got, _ := f.svc.Lifecycle.Get(ctx, inc.ID)
	if got.Status != domain.StatusPendingAssignment || len(got.Timeline) != 1 {
		t.Fatalf("incident changed by rejected transitions: %s, %d entries", got.Status, len(got.Timeline))
	}
}

func TestLifecycle_Transition_Authorization(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	inc := f.create(t, galleRoadReport())
	ctx := context.Background()

	_, err := f.svc.Lifecycle.Transition(ctx, driverActor("drv-near"), inc.ID, domain.TransitionRequest{Status: domain.StatusCancelled})
	if !errors.Is(err, e.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	_, err = f.svc.Lifecycle.Transition(ctx, operator, inc.ID, domain.TransitionRequest{Status: "Flying"})
	if !errors.Is(err, e.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	_, err = f.svc.Lifecycle.Transition(ctx, operator, uuid.New(), domain.TransitionRequest{Status: domain.StatusCancelled})
	if !errors.Is(err, e.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestLifecycle_Transition_CancelAssignedIncident(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	inc := f.create(t, galleRoadReport())
	f.assign(t, inc.ID, "drv-near")
	ctx := context.Background()

	got, err := f.svc.Lifecycle.Transition(ctx, admin, inc.ID, domain.TransitionRequest{
		Status: domain.StatusCancelled,
		Notes:  "duplicate report",
	})
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if got.Status != domain.StatusCancelled || got.Assignment != nil {
		t.Fatalf("status=%s assignment=%+v", got.Status, got.Assignment)
	}
	if got.Completion == nil || got.Completion.Outcome != "Cancelled" || got.Completion.DriverID != "drv-near" {
		t.Fatalf("completion = %+v", got.Completion)
	}
	if len(got.Timeline) != 3 || got.LastEntry().Notes != "duplicate report" {
		t.Fatalf("timeline = %+v", got.Timeline)
	}
	mustInvariants(t, got)

	busy, _ := f.store.BusyDrivers(ctx)
	if len(busy) != 0 {
		t.Fatalf("busy drivers after cancel = %v", busy)
	}

	if _, err := f.svc.Lifecycle.Transition(ctx, admin, inc.ID, domain.TransitionRequest{Status: domain.StatusCancelled}); !errors.Is(err, e.ErrInvalidTransition) {
		t.Fatalf("second cancel err = %v, want ErrInvalidTransition", err)
	}

	types := f.emitter.types()
	if types[len(types)-1] != domain.NotificationIncidentCompleted {
		t.Fatalf("last notification = %s", types[len(types)-1])
	}
}

func TestLifecycle_AddNote_AllowedOnTerminal(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	inc := f.create(t, galleRoadReport())
	ctx := context.Background()

	if _, err := f.svc.Lifecycle.Transition(ctx, operator, inc.ID, domain.TransitionRequest{Status: domain.StatusCancelled}); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	got, err := f.svc.Lifecycle.AddNote(ctx, operator, inc.ID, domain.NoteRequest{Notes: "reporter called back"})
	if err != nil {
		t.Fatalf("AddNote: %v", err)
	}
	if got.Status != domain.StatusCancelled || len(got.Timeline) != 3 {
		t.Fatalf("status=%s entries=%d", got.Status, len(got.Timeline))
	}
	if last := got.LastEntry(); last.Action != domain.ActionNote || last.Notes != "reporter called back" {
		t.Fatalf("last entry = %+v", last)
	}

	if _, err := f.svc.Lifecycle.AddNote(ctx, reporter, inc.ID, domain.NoteRequest{Notes: "x"}); !errors.Is(err, e.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestLifecycle_AdminUpdate_AllowList(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	inc := f.create(t, galleRoadReport())
	ctx := context.Background()

	addr := "Duplication Road, Colombo 04"
	if _, err := f.svc.Lifecycle.AdminUpdate(ctx, operator, inc.ID, domain.AdminIncidentUpdate{Address: &addr}); !errors.Is(err, e.ErrForbidden) {
		t.Fatalf("operator err = %v, want ErrForbidden", err)
	}

	got, err := f.svc.Lifecycle.AdminUpdate(ctx, admin, inc.ID, domain.AdminIncidentUpdate{
		Address: &addr,
		Lat:     f64ptr(6.8935),
		Lng:     f64ptr(79.8565),
	})
	if err != nil {
		t.Fatalf("AdminUpdate: %v", err)
	}
	if got.Location.Address != addr || got.Location.Approximate {
		t.Fatalf("location = %+v", got.Location)
	}
	if got.Status != inc.Status || got.Priority != inc.Priority || got.Reporter != inc.Reporter {
		t.Fatalf("non allow-listed fields changed")
	}
	if last := got.LastEntry(); !strings.Contains(last.Notes, "address") || !strings.Contains(last.Notes, "coordinates") {
		t.Fatalf("last entry notes = %q", last.Notes)
	}

	if _, err := f.svc.Lifecycle.AdminUpdate(ctx, admin, inc.ID, domain.AdminIncidentUpdate{}); !errors.Is(err, e.ErrInvalidInput) {
		t.Fatalf("empty update err = %v, want ErrInvalidInput", err)
	}
	if _, err := f.svc.Lifecycle.AdminUpdate(ctx, admin, inc.ID, domain.AdminIncidentUpdate{Lat: f64ptr(7)}); !errors.Is(err, e.ErrInvalidInput) {
		t.Fatalf("lat-only update err = %v, want ErrInvalidInput", err)
	}
}

func TestLifecycle_Retriage(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	inc := f.create(t, galleRoadReport())
	ctx := context.Background()

	got, err := f.svc.Lifecycle.Retriage(ctx, operator, inc.ID, domain.RetriageRequest{Condition: "stable", Reason: "vet on site"})
	if err != nil {
		t.Fatalf("Retriage: %v", err)
	}
	if got.Priority != domain.PriorityNormal || got.IsEmergency || got.ConditionDescriptor != "stable" {
		t.Fatalf("triage = %s/%t/%s", got.Priority, got.IsEmergency, got.ConditionDescriptor)
	}
	if last := got.LastEntry(); last.Action != domain.ActionRetriage || !strings.Contains(last.Notes, "vet on site") {
		t.Fatalf("last entry = %+v", last)
	}
	mustInvariants(t, got)

	if _, err := f.svc.Lifecycle.Transition(ctx, operator, inc.ID, domain.TransitionRequest{Status: domain.StatusCancelled}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := f.svc.Lifecycle.Retriage(ctx, operator, inc.ID, domain.RetriageRequest{Condition: "critical"}); !errors.Is(err, e.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}
