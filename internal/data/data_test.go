package data

import (
	"strings"
	"testing"

	"slotsim/internal/conf"
	"slotsim/internal/slot"

	"github.com/shopspring/decimal"
)

func TestRabbitmqOptions(t *testing.T) {
	tests := []struct {
		c    conf.Data_Rabbitmq
		want string
	}{
		{conf.Data_Rabbitmq{Host: "mq", Port: 5672, Username: "guest", Password: "guest", Vhost: "/"},
			"amqp://guest:guest@mq:5672/"},
		{conf.Data_Rabbitmq{Host: "mq", Port: 5673, Username: "admin", Password: "p#@ss/word"},
			"amqp://admin:p%23%40ss%2Fword@mq:5673/"},
		{conf.Data_Rabbitmq{Host: "mq", Port: 5672, Username: "a", Password: "b", Vhost: "sims"},
			"amqp://a:b@mq:5672/sims"},
	}
	for _, tt := range tests {
		opts, _ := rabbitmqOptions(&tt.c)
		if got := opts.BuildURL(); got != tt.want {
			t.Errorf("BuildURL(%+v) = %s, want %s", tt.c, got, tt.want)
		}
	}

	_, pub := rabbitmqOptions(&conf.Data_Rabbitmq{Exchange: "slotsim.books", RoutingKey: "book"})
	if pub.Exchange != "slotsim.books" || pub.ExchangeType != "direct" || pub.RoutingKey != "book" {
		t.Fatalf("publisher options = %+v", pub)
	}
}

func TestNewBookRow(t *testing.T) {
	b := &slot.Book{
		ID:               42,
		Criteria:         "basegame",
		PayoutMultiplier: 250,
		BaseGameWins:     decimal.RequireFromString("2.5"),
		FreeGameWins:     decimal.Zero,
		Events:           []slot.Event{&slot.FinalWinEvent{EventHeader: slot.EventHeader{Type: slot.EventFinalWin}, Amount: 250}},
		Attempts:         3,
	}
	row, err := newBookRow("pass-1", "base", b)
	if err != nil {
		t.Fatal(err)
	}
	if row.SimID != 42 || row.PassID != "pass-1" || row.Mode != "base" || row.Attempts != 3 {
		t.Fatalf("row = %+v", row)
	}
	if row.BaseGameWins != "2.5" || row.FreeGameWins != "0" || row.PayoutMultiplier != 250 {
		t.Fatalf("wins = %s/%s/%d", row.BaseGameWins, row.FreeGameWins, row.PayoutMultiplier)
	}
	if !strings.Contains(row.Events, `"type":"finalWin"`) || !strings.Contains(row.Events, `"amount":250`) {
		t.Fatalf("events = %s", row.Events)
	}
}
