// File: services/conversation/orchestrator_test.go
package conversation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"hestia/models"
)

type fakeClassifier struct {
	result *models.NLUResult
	err    error
	calls  int
}

func (f *fakeClassifier) Classify(ctx context.Context, text string, sess *models.GuestSession, state models.ConversationState) (*models.NLUResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeFAQ struct {
	answer string
}

func (f *fakeFAQ) AnswerFAQ(ctx context.Context, question string) (string, error) {
	return f.answer, nil
}

type fakeTickets struct {
	created []models.TicketInput
	fail    bool
}

func (f *fakeTickets) CreateTicket(ctx context.Context, in models.TicketInput) (*models.Ticket, error) {
	if f.fail {
		return nil, errors.New("mongo down")
	}
	f.created = append(f.created, in)
	return &models.Ticket{Codigo: "HST-AB12CD34", Area: in.Area, Status: models.TicketStatusAbierto}, nil
}

type fakeNotifier struct {
	events   []string
	payloads []models.NotifyPayload
}

func (f *fakeNotifier) NotifyInternal(ctx context.Context, event string, payload models.NotifyPayload) {
	f.events = append(f.events, event)
	f.payloads = append(f.payloads, payload)
}

type fixture struct {
	svc      *DefaultConversationService
	store    *MemorySessionStore
	nlu      *fakeClassifier
	faq      *fakeFAQ
	tickets  *fakeTickets
	notifier *fakeNotifier
}

func newFixture(nluResult *models.NLUResult) *fixture {
	store := NewMemorySessionStore(15 * time.Minute)
	nlu := &fakeClassifier{result: nluResult}
	faq := &fakeFAQ{}
	tickets := &fakeTickets{}
	notifier := &fakeNotifier{}
	return &fixture{
		svc: &DefaultConversationService{
			Store:    store,
			NLU:      nlu,
			FAQ:      faq,
			Tickets:  tickets,
			Notifier: notifier,
			OrgID:    "org-1",
			HotelID:  "hotel-1",
		},
		store:    store,
		nlu:      nlu,
		faq:      faq,
		tickets:  tickets,
		notifier: notifier,
	}
}

func (f *fixture) send(t *testing.T, waID, text string) []models.Reply {
	t.Helper()
	replies, err := f.svc.HandleMessage(context.Background(), models.InboundMessage{
		WaID: waID, Phone: waID, Text: text, Timestamp: time.Now(),
	})
	if err != nil {
		t.Fatalf("HandleMessage(%q) returned error: %v", text, err)
	}
	return replies
}

func (f *fixture) session(t *testing.T, waID string) *models.GuestSession {
	t.Helper()
	sess, err := f.store.Load(context.Background(), waID)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if sess == nil {
		t.Fatalf("session %s not found", waID)
	}
	return sess
}

func (f *fixture) seed(t *testing.T, sess *models.GuestSession) {
	t.Helper()
	if err := f.store.Save(context.Background(), sess.WaID, sess); err != nil {
		t.Fatalf("seed session: %v", err)
	}
}

func TestEmptyTextGreetsNewGuestOnly(t *testing.T) {
	f := newFixture(models.NotUnderstood())

	replies := f.send(t, "56911111111", "")
	if len(replies) != 1 || replies[0].Text != greetingText {
		t.Fatalf("first empty message: want single greeting, got %v", replies)
	}

	replies = f.send(t, "56911111111", "   ")
	if len(replies) != 0 {
		t.Fatalf("repeated empty message should be silent, got %v", replies)
	}
	if f.nlu.calls != 0 {
		t.Fatalf("empty input must never reach the classifier, got %d calls", f.nlu.calls)
	}
}

func TestCancelWinsFromEveryState(t *testing.T) {
	states := []models.ConversationState{
		models.StateInit, models.StateIdentify, models.StateAreaClarification,
		models.StateDetailClarification, models.StateTicketConfirm,
		models.StateFAQ, models.StateHandoff,
	}
	for _, state := range states {
		t.Run(string(state), func(t *testing.T) {
			f := newFixture(models.NotUnderstood())
			f.seed(t, &models.GuestSession{
				WaID: "56922222222", Phone: "56922222222",
				State:         state,
				TicketDraft:   &models.TicketDraft{Area: models.AreaMantencion, Detail: "fuga de agua"},
				TempGuestName: "Juan", TempRoom: "101",
				LastMessageAt: time.Now(),
			})

			replies := f.send(t, "56922222222", "mejor quiero cancelar eso")
			if len(replies) != 1 || replies[0].Text != cancelAckText {
				t.Fatalf("state %s: want cancel ack, got %v", state, replies)
			}

			sess := f.session(t, "56922222222")
			if sess.State != models.StateNew {
				t.Errorf("state %s: want NEW after cancel, got %s", state, sess.State)
			}
			if sess.TicketDraft != nil || sess.TempGuestName != "" || sess.TempRoom != "" {
				t.Errorf("state %s: draft and scratch identity must be cleared", state)
			}
			if f.nlu.calls != 0 {
				t.Errorf("state %s: cancel must resolve before classification", state)
			}
		})
	}
}

func TestMenuKeywordResetsState(t *testing.T) {
	f := newFixture(models.NotUnderstood())
	f.seed(t, &models.GuestSession{
		WaID: "56933333333", State: models.StateFAQ, LastMessageAt: time.Now(),
	})

	replies := f.send(t, "56933333333", "Menú")
	if len(replies) != 1 || replies[0].Text != menuText {
		t.Fatalf("want menu text, got %v", replies)
	}
	if got := f.session(t, "56933333333").State; got != models.StateInit {
		t.Fatalf("want INIT after menu keyword, got %s", got)
	}
}

func TestHandoffStateStaysSilentAndNotifiesStaff(t *testing.T) {
	f := newFixture(models.NotUnderstood())
	f.seed(t, &models.GuestSession{
		WaID: "56944444444", State: models.StateHandoff,
		GuestName: "Ana Soto", Room: "310", LastMessageAt: time.Now(),
	})

	replies := f.send(t, "56944444444", "sigo esperando que me atiendan")
	if len(replies) != 0 {
		t.Fatalf("handoff state must stay silent toward the guest, got %v", replies)
	}
	if f.nlu.calls != 0 {
		t.Fatalf("handoff silence must not invoke the classifier")
	}
	if len(f.notifier.events) != 1 || f.notifier.events[0] != "handoff_message" {
		t.Fatalf("want one handoff_message notification, got %v", f.notifier.events)
	}
	if f.notifier.payloads[0].Detail != "sigo esperando que me atiendan" {
		t.Fatalf("notification must carry the guest text, got %q", f.notifier.payloads[0].Detail)
	}
}

func TestLowConfidenceRequestAsksForArea(t *testing.T) {
	f := newFixture(&models.NLUResult{
		Intent:            models.IntentTicketRequest,
		Detail:            "tengo un problema en mi habitación",
		RoutingConfidence: 0.30,
	})

	replies := f.send(t, "56955555555", "tengo un problema en mi habitación")
	if len(replies) != 1 || replies[0].Text != areaMenuText {
		t.Fatalf("low confidence must ask the area menu, got %v", replies)
	}
	sess := f.session(t, "56955555555")
	if sess.State != models.StateAreaClarification {
		t.Fatalf("want AREA_CLARIFICATION, got %s", sess.State)
	}
	if sess.PendingDetail == "" {
		t.Fatalf("pending detail must be carried into clarification")
	}
	if sess.TicketDraft != nil {
		t.Fatalf("no draft may exist before the guest picks a department")
	}
}

func TestConfidentAreaBelowThresholdStillAsks(t *testing.T) {
	f := newFixture(&models.NLUResult{
		Intent:            models.IntentTicketRequest,
		Area:              models.AreaMantencion,
		Detail:            "la ducha gotea",
		RoutingConfidence: 0.64,
	})

	replies := f.send(t, "56955555556", "la ducha gotea")
	if len(replies) != 1 || replies[0].Text != areaMenuText {
		t.Fatalf("confidence just below threshold must still clarify, got %v", replies)
	}
}

func TestVagueProblemFullClarificationFlow(t *testing.T) {
	f := newFixture(&models.NLUResult{
		Intent:            models.IntentTicketRequest,
		Detail:            "tengo un problema",
		RoutingConfidence: 0.2,
	})
	waID := "56966666666"

	// Turn 1: vague report, no area.
	f.send(t, waID, "tengo un problema")
	if got := f.session(t, waID).State; got != models.StateAreaClarification {
		t.Fatalf("turn 1: want AREA_CLARIFICATION, got %s", got)
	}

	// Turn 2: guest picks maintenance; the detail is still vague, so the
	// area-specific follow-up comes next.
	replies := f.send(t, waID, "1")
	if len(replies) != 1 || replies[0].Text != detailQuestion(models.AreaMantencion) {
		t.Fatalf("turn 2: want maintenance detail question, got %v", replies)
	}
	sess := f.session(t, waID)
	if sess.State != models.StateDetailClarification {
		t.Fatalf("turn 2: want DETAIL_CLARIFICATION, got %s", sess.State)
	}
	if sess.TicketDraft == nil || sess.TicketDraft.Area != models.AreaMantencion {
		t.Fatalf("turn 2: draft must hold the chosen area")
	}
	if sess.TicketDraft.RoutingSource != "clarification" || sess.TicketDraft.RoutingConfidence != 1.0 {
		t.Fatalf("turn 2: explicit choice must be authoritative, got %+v", sess.TicketDraft)
	}

	// Turn 3: concrete detail but identity still unknown.
	replies = f.send(t, waID, "el aire acondicionado hace un ruido fuerte")
	if len(replies) != 1 || replies[0].Text != askIdentityText {
		t.Fatalf("turn 3: want identity request, got %v", replies)
	}
	if got := f.session(t, waID).State; got != models.StateIdentify {
		t.Fatalf("turn 3: want IDENTIFY, got %s", got)
	}

	// Turn 4: name and room in one message, extracted by regex because the
	// classifier has nothing.
	f.nlu.result = models.NotUnderstood()
	replies = f.send(t, waID, "Juan Pérez, habitación 205")
	if len(replies) != 1 || !strings.Contains(replies[0].Text, "¿Confirmas?") {
		t.Fatalf("turn 4: want combined confirmation, got %v", replies)
	}
	if !strings.Contains(replies[0].Text, "Juan Pérez") || !strings.Contains(replies[0].Text, "205") {
		t.Fatalf("turn 4: confirmation must echo name and room, got %q", replies[0].Text)
	}

	// Turn 5: confirmation.
	replies = f.send(t, waID, "sí")
	if len(replies) != 1 || !strings.Contains(replies[0].Text, "quedó registrada") {
		t.Fatalf("turn 5: want success message, got %v", replies)
	}
	if strings.Contains(replies[0].Text, "HST-") {
		t.Fatalf("turn 5: ticket code must never reach the guest, got %q", replies[0].Text)
	}

	if len(f.tickets.created) != 1 {
		t.Fatalf("want exactly one ticket, got %d", len(f.tickets.created))
	}
	in := f.tickets.created[0]
	if in.Area != models.AreaMantencion || in.Ubicacion != "205" || in.GuestName != "Juan Pérez" {
		t.Fatalf("ticket input mismatch: %+v", in)
	}
	if in.CanalOrigen != "whatsapp" || in.RoutingSource != "clarification" {
		t.Fatalf("ticket provenance mismatch: %+v", in)
	}

	sess = f.session(t, waID)
	if sess.State != models.StateNew || sess.TicketDraft != nil {
		t.Fatalf("after creation: want clean NEW session, got state=%s draft=%v", sess.State, sess.TicketDraft)
	}
	if sess.GuestName != "Juan Pérez" || sess.Room != "205" {
		t.Fatalf("confirmed identity must be promoted into the session, got %q/%q", sess.GuestName, sess.Room)
	}
}

func TestConfidentRequestWithKnownIdentitySkipsIdentify(t *testing.T) {
	f := newFixture(&models.NLUResult{
		Intent:            models.IntentTicketRequest,
		Area:              models.AreaHousekeeping,
		Detail:            "necesito toallas extra",
		Name:              "Ana Soto",
		Room:              "310",
		RoutingConfidence: 0.92,
	})

	replies := f.send(t, "56977777777", "soy Ana Soto de la 310, necesito toallas extra")
	if len(replies) != 1 || !strings.Contains(replies[0].Text, "¿Confirmas?") {
		t.Fatalf("want direct confirmation, got %v", replies)
	}
	if got := f.session(t, "56977777777").State; got != models.StateTicketConfirm {
		t.Fatalf("want TICKET_CONFIRM, got %s", got)
	}
}

func TestProfileNameDoesNotSatisfyIdentity(t *testing.T) {
	f := newFixture(&models.NLUResult{
		Intent:            models.IntentTicketRequest,
		Area:              models.AreaMantencion,
		Detail:            "la TV no funciona",
		RoutingConfidence: 0.9,
	})

	replies, err := f.svc.HandleMessage(context.Background(), models.InboundMessage{
		WaID: "56988888888", Phone: "56988888888",
		Name: "Pedro WhatsApp", Text: "la TV no funciona", Timestamp: time.Now(),
	})
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if len(replies) != 1 || replies[0].Text != askIdentityText {
		t.Fatalf("profile name alone must not skip identity collection, got %v", replies)
	}
	sess := f.session(t, "56988888888")
	if sess.State != models.StateIdentify {
		t.Fatalf("want IDENTIFY, got %s", sess.State)
	}
	if sess.DisplayName != "Pedro WhatsApp" || sess.GuestName != "" {
		t.Fatalf("display name must stay separate from confirmed name: %q/%q", sess.DisplayName, sess.GuestName)
	}
}

func TestConfirmationNoRestartsIdentity(t *testing.T) {
	f := newFixture(models.NotUnderstood())
	f.seed(t, &models.GuestSession{
		WaID: "56900000001", State: models.StateTicketConfirm,
		TicketDraft:   &models.TicketDraft{Area: models.AreaMantencion, Detail: "fuga"},
		TempGuestName: "Juan", TempRoom: "101",
		LastMessageAt: time.Now(),
	})

	replies := f.send(t, "56900000001", "no")
	if len(replies) != 1 || replies[0].Text != askIdentityText {
		t.Fatalf("rejected confirmation must re-collect identity, got %v", replies)
	}
	sess := f.session(t, "56900000001")
	if sess.State != models.StateIdentify {
		t.Fatalf("want IDENTIFY, got %s", sess.State)
	}
	if sess.TempGuestName != "" || sess.TempRoom != "" {
		t.Fatalf("scratch identity must be dropped on a no")
	}
	if sess.TicketDraft == nil || sess.TicketDraft.Area != models.AreaMantencion {
		t.Fatalf("draft area must survive a no, got %+v", sess.TicketDraft)
	}
	if len(f.tickets.created) != 0 {
		t.Fatalf("no ticket may be created on a rejected confirmation")
	}
}

func TestRejectedConfirmationAcceptsCorrectedIdentity(t *testing.T) {
	f := newFixture(models.NotUnderstood())
	f.seed(t, &models.GuestSession{
		WaID: "56900000010", Phone: "56900000010", State: models.StateTicketConfirm,
		TicketDraft: &models.TicketDraft{
			Area: models.AreaMantencion, Detail: "fuga en el baño",
			GuestName: "Juan Pérez", Room: "205",
		},
		LastMessageAt: time.Now(),
	})

	f.send(t, "56900000010", "no")

	replies := f.send(t, "56900000010", "Juan Pérez, habitación 301")
	if len(replies) != 1 || !strings.Contains(replies[0].Text, "¿Confirmas?") {
		t.Fatalf("corrected identity must reach a new confirmation, got %v", replies)
	}
	if !strings.Contains(replies[0].Text, "301") {
		t.Fatalf("re-confirmation must echo the corrected room, got %q", replies[0].Text)
	}
	if strings.Contains(replies[0].Text, "205") {
		t.Fatalf("stale room must not survive a rejected confirmation, got %q", replies[0].Text)
	}

	f.send(t, "56900000010", "sí")
	if len(f.tickets.created) != 1 {
		t.Fatalf("want one ticket, got %d", len(f.tickets.created))
	}
	if in := f.tickets.created[0]; in.Ubicacion != "301" || in.GuestName != "Juan Pérez" {
		t.Fatalf("ticket must carry the corrected identity, got ubicacion=%q name=%q", in.Ubicacion, in.GuestName)
	}
}

func TestConfirmationAmbiguousAnswerIsNotAYes(t *testing.T) {
	f := newFixture(&models.NLUResult{
		Intent:            models.IntentTicketRequest,
		Area:              models.AreaMantencion,
		Detail:            "también está rota la lámpara",
		RoutingConfidence: 0.9,
	})
	f.seed(t, &models.GuestSession{
		WaID: "56900000002", State: models.StateTicketConfirm,
		GuestName: "Ana", Room: "310",
		TicketDraft:   &models.TicketDraft{Area: models.AreaMantencion, Detail: "fuga"},
		LastMessageAt: time.Now(),
	})

	f.send(t, "56900000002", "también está rota la lámpara")
	if len(f.tickets.created) != 0 {
		t.Fatalf("a non yes/no answer must never create a ticket")
	}
	if f.nlu.calls != 1 {
		t.Fatalf("a non yes/no answer must fall through to classification")
	}
}

func TestTicketFailureApologizesAndAlerts(t *testing.T) {
	f := newFixture(models.NotUnderstood())
	f.tickets.fail = true
	f.seed(t, &models.GuestSession{
		WaID: "56900000003", Phone: "56900000003", State: models.StateTicketConfirm,
		GuestName: "Ana Soto", Room: "310",
		TicketDraft:   &models.TicketDraft{Area: models.AreaMantencion, Detail: "fuga de agua"},
		LastMessageAt: time.Now(),
	})

	replies := f.send(t, "56900000003", "sí")
	if len(replies) != 1 || replies[0].Text != ticketFailureText {
		t.Fatalf("want failure apology, got %v", replies)
	}
	if len(f.notifier.events) != 1 || f.notifier.events[0] != "ticket_creation_failed" {
		t.Fatalf("staff must be alerted on creation failure, got %v", f.notifier.events)
	}
	sess := f.session(t, "56900000003")
	if sess.State != models.StateNew || sess.TicketDraft != nil {
		t.Fatalf("failed creation still terminates the draft, got state=%s", sess.State)
	}
}

func TestHandoffIntentEscalates(t *testing.T) {
	f := newFixture(&models.NLUResult{Intent: models.IntentHandoffRequest})

	replies := f.send(t, "56900000004", "quiero hablar con una persona")
	if len(replies) != 1 || replies[0].Text != handoffText {
		t.Fatalf("want handoff acknowledgement, got %v", replies)
	}
	if got := f.session(t, "56900000004").State; got != models.StateHandoff {
		t.Fatalf("want HANDOFF, got %s", got)
	}
	if len(f.notifier.events) != 1 || f.notifier.events[0] != "handoff_requested" {
		t.Fatalf("want handoff_requested notification, got %v", f.notifier.events)
	}
}

func TestClassifierErrorDegradesToFallback(t *testing.T) {
	f := newFixture(nil)
	f.nlu.err = errors.New("gemini timeout")

	replies := f.send(t, "56900000005", "necesito que arreglen la ducha")
	if len(replies) != 1 || replies[0].Text != fallbackCapabilitiesText {
		t.Fatalf("classifier failure must degrade to the capability summary, got %v", replies)
	}
	if got := f.session(t, "56900000005").State; got != models.StateInit {
		t.Fatalf("want INIT after fallback, got %s", got)
	}
}

func TestFAQAnswerAppendsFollowUp(t *testing.T) {
	f := newFixture(&models.NLUResult{Intent: models.IntentFAQQuestion})
	f.faq.answer = "El desayuno se sirve de 7:00 a 10:30 en el primer piso."

	replies := f.send(t, "56900000006", "¿a qué hora es el desayuno?")
	if len(replies) != 1 {
		t.Fatalf("want one reply, got %v", replies)
	}
	if !strings.HasPrefix(replies[0].Text, f.faq.answer) || !strings.Contains(replies[0].Text, faqAnythingElseText) {
		t.Fatalf("FAQ reply must carry the answer plus follow-up, got %q", replies[0].Text)
	}
	if got := f.session(t, "56900000006").State; got != models.StateFAQ {
		t.Fatalf("want FAQ, got %s", got)
	}
}

func TestMultiRequestBatchDefersTheRest(t *testing.T) {
	f := newFixture(&models.NLUResult{
		Intent:            models.IntentTicketRequest,
		Detail:            "no hay toallas y la tele no funciona",
		RoutingConfidence: 0.4,
		Requests: []models.PendingRequest{
			{Area: models.AreaHousekeeping, Detail: "no hay toallas"},
			{Area: models.AreaMantencion, Detail: "la tele no funciona"},
		},
	})
	waID := "56900000007"

	f.send(t, waID, "no hay toallas y la tele no funciona")
	sess := f.session(t, waID)
	if sess.State != models.StateAreaClarification || len(sess.PendingRequests) != 2 {
		t.Fatalf("batch must park both requests, got state=%s pending=%d", sess.State, len(sess.PendingRequests))
	}

	f.send(t, waID, "mantención")
	sess = f.session(t, waID)
	if sess.TicketDraft == nil || sess.TicketDraft.Area != models.AreaMantencion {
		t.Fatalf("chosen area must pick the matching request, got %+v", sess.TicketDraft)
	}
	if sess.TicketDraft.Detail != "la tele no funciona" {
		t.Fatalf("draft must use the matching request's detail, got %q", sess.TicketDraft.Detail)
	}
	if len(sess.RemainingRequests) != 1 || sess.RemainingRequests[0].Area != models.AreaHousekeeping {
		t.Fatalf("the other request must be deferred, got %+v", sess.RemainingRequests)
	}
}

func TestBatchChoiceMatchingNoRequestDefersWholeBatch(t *testing.T) {
	f := newFixture(&models.NLUResult{
		Intent:            models.IntentTicketRequest,
		Detail:            "no hay toallas y la tele no funciona",
		RoutingConfidence: 0.4,
		Requests: []models.PendingRequest{
			{Area: models.AreaHousekeeping, Detail: "no hay toallas"},
			{Area: models.AreaMantencion, Detail: "la tele no funciona"},
		},
	})
	waID := "56900000011"

	f.send(t, waID, "no hay toallas y la tele no funciona")
	// The guest picks reception, which none of the parked requests belongs to.
	f.send(t, waID, "3")

	sess := f.session(t, waID)
	if sess.TicketDraft == nil || sess.TicketDraft.Area != models.AreaRecepcion {
		t.Fatalf("draft must follow the guest's choice, got %+v", sess.TicketDraft)
	}
	if sess.TicketDraft.Detail != "no hay toallas y la tele no funciona" {
		t.Fatalf("an unmatched choice must keep the original text, not another request's detail, got %q", sess.TicketDraft.Detail)
	}
	if len(sess.RemainingRequests) != 2 {
		t.Fatalf("the whole batch must be deferred, got %+v", sess.RemainingRequests)
	}
	if len(sess.PendingRequests) != 0 {
		t.Fatalf("pending requests must be consumed, got %+v", sess.PendingRequests)
	}
}

func TestUnknownAreaReplyRepromptsMenu(t *testing.T) {
	f := newFixture(models.NotUnderstood())
	f.seed(t, &models.GuestSession{
		WaID: "56900000008", State: models.StateAreaClarification,
		PendingDetail: "algo pasa", LastMessageAt: time.Now(),
	})

	replies := f.send(t, "56900000008", "no sé qué elegir")
	if len(replies) != 1 || replies[0].Text != areaMenuText {
		t.Fatalf("unrecognized area reply must re-prompt, got %v", replies)
	}
	if got := f.session(t, "56900000008").State; got != models.StateAreaClarification {
		t.Fatalf("state must not move on a re-prompt, got %s", got)
	}
}

func TestHelpIntentShowsCapabilities(t *testing.T) {
	f := newFixture(&models.NLUResult{Intent: models.IntentHelp})

	replies := f.send(t, "56900000009", "ayuda")
	if len(replies) != 1 || replies[0].Text != helpText {
		t.Fatalf("want help text, got %v", replies)
	}
}
