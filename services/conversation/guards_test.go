// File: services/conversation/guards_test.go
package conversation

import (
	"testing"

	"hestia/models"
)

func TestMatchesCancel(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"cancelar", true},
		{"quiero cancelarlo", true},
		{"mejor anula la solicitud", true},
		{"olvídalo", true},
		{"ya no lo necesito", true},
		{"ya no quiero", true},
		{"déjalo así", true},
		{"no quiero nada", true},
		{"necesito toallas", false},
		{"la tele no funciona", false},
		{"no", false},
	}
	for _, c := range cases {
		if got := matchesCancel(c.text); got != c.want {
			t.Errorf("matchesCancel(%q) = %v, want %v", c.text, got, c.want)
		}
	}
}

func TestMatchYesNo(t *testing.T) {
	cases := []struct {
		text    string
		wantYes bool
		wantOK  bool
	}{
		{"sí", true, true},
		{"Si", true, true},
		{"sí!", true, true},
		{"  dale  ", true, true},
		{"confirmo", true, true},
		{"de acuerdo", true, true},
		{"OK.", true, true},
		{"no", false, true},
		{"No gracias", false, true},
		{"mejor no", false, true},
		{"también la lámpara está rota", false, false},
		{"", false, false},
		{"si quiero que vengan", false, false},
	}
	for _, c := range cases {
		yes, ok := matchYesNo(c.text)
		if yes != c.wantYes || ok != c.wantOK {
			t.Errorf("matchYesNo(%q) = (%v, %v), want (%v, %v)", c.text, yes, ok, c.wantYes, c.wantOK)
		}
	}
}

func TestMatchesMenu(t *testing.T) {
	for _, text := range []string{"menu", "Menú", " INICIO ", "start"} {
		if !matchesMenu(text) {
			t.Errorf("matchesMenu(%q) = false, want true", text)
		}
	}
	for _, text := range []string{"el menú del restaurante", "quiero empezar", ""} {
		if matchesMenu(text) {
			t.Errorf("matchesMenu(%q) = true, want false", text)
		}
	}
}

func TestMatchAreaChoice(t *testing.T) {
	cases := []struct {
		text   string
		want   models.TicketArea
		wantOK bool
	}{
		{"1", models.AreaMantencion, true},
		{"2", models.AreaHousekeeping, true},
		{"3", models.AreaRecepcion, true},
		{"4", models.AreaGerencia, true},
		{"mantención", models.AreaMantencion, true},
		{"mantenimiento por favor", models.AreaMantencion, true},
		{"limpieza", models.AreaHousekeeping, true},
		{"necesito toallas", models.AreaHousekeeping, true},
		{"recepción", models.AreaRecepcion, true},
		{"es por un pago", models.AreaRecepcion, true},
		{"otro", models.AreaGerencia, true},
		{"tengo una queja", models.AreaGerencia, true},
		{"5", "", false},
		{"no sé", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, ok := matchAreaChoice(c.text)
		if got != c.want || ok != c.wantOK {
			t.Errorf("matchAreaChoice(%q) = (%q, %v), want (%q, %v)", c.text, got, ok, c.want, c.wantOK)
		}
	}
}

func TestIsVagueDetail(t *testing.T) {
	vague := []string{
		"", "tengo un problema", "Hay un problema", "ayuda",
		"tengo un problema en mi habitación", "no funciona", "Necesito algo...",
	}
	for _, text := range vague {
		if !isVagueDetail(text) {
			t.Errorf("isVagueDetail(%q) = false, want true", text)
		}
	}
	concrete := []string{
		"el aire acondicionado no enfría",
		"hay una fuga de agua en el baño",
		"necesito dos toallas extra",
	}
	for _, text := range concrete {
		if isVagueDetail(text) {
			t.Errorf("isVagueDetail(%q) = true, want false", text)
		}
	}
}

func TestFold(t *testing.T) {
	cases := map[string]string{
		"Mantención": "mantencion",
		"SEÑOR":      "senor",
		"está bien":  "esta bien",
		"plain":      "plain",
	}
	for in, want := range cases {
		if got := fold(in); got != want {
			t.Errorf("fold(%q) = %q, want %q", in, got, want)
		}
	}
}
