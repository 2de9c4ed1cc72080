package data

import (
	"context"
	"fmt"
	"time"

	"slotsim/internal/biz"
	"slotsim/internal/slot"

	"github.com/yola1107/kratos/v2/log"
)

// bookRow is one accepted book in the sim_book table.
type bookRow struct {
	ID               int64     `xorm:"pk autoincr 'id'"`
	PassID           string    `xorm:"varchar(36) notnull index(idx_pass_sim) 'pass_id'"`
	Mode             string    `xorm:"varchar(64) notnull 'mode'"`
	SimID            int       `xorm:"notnull index(idx_pass_sim) 'sim_id'"`
	Criteria         string    `xorm:"varchar(64) notnull 'criteria'"`
	PayoutMultiplier int64     `xorm:"notnull 'payout_multiplier'"`
	BaseGameWins     string    `xorm:"varchar(32) 'base_game_wins'"`
	FreeGameWins     string    `xorm:"varchar(32) 'free_game_wins'"`
	Attempts         int       `xorm:"'attempts'"`
	Events           string    `xorm:"mediumtext 'events'"`
	Created          time.Time `xorm:"created 'created_at'"`
}

func (bookRow) TableName() string { return "sim_book" }

// bookMessage is what the book writer consumes from the exchange.
type bookMessage struct {
	PassID string     `json:"passId"`
	Mode   string     `json:"mode"`
	Book   *slot.Book `json:"book"`
}

type bookRepo struct {
	data *Data
	log  *log.Helper
}

// NewBookRepo .
func NewBookRepo(data *Data, logger log.Logger) biz.BookRepo {
	return &bookRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *bookRepo) SaveBooks(ctx context.Context, passID, mode string, books []*slot.Book) error {
	rows := make([]*bookRow, 0, len(books))
	for _, b := range books {
		row, err := newBookRow(passID, mode, b)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}
	if _, err := r.data.db.Context(ctx).Insert(&rows); err != nil {
		return fmt.Errorf("insert %d books of pass %s: %w", len(rows), passID, err)
	}

	for _, b := range books {
		body, err := json.Marshal(&bookMessage{PassID: passID, Mode: mode, Book: b})
		if err != nil {
			return fmt.Errorf("encode book %d: %w", b.ID, err)
		}
		if err := r.data.pub.Publish(body); err != nil {
			return fmt.Errorf("publish book %d of pass %s: %w", b.ID, passID, err)
		}
	}
	r.log.WithContext(ctx).Debugf("pass %s: saved %d books", passID, len(books))
	return nil
}

func newBookRow(passID, mode string, b *slot.Book) (*bookRow, error) {
	events, err := json.MarshalToString(b.Events)
	if err != nil {
		return nil, fmt.Errorf("encode events of book %d: %w", b.ID, err)
	}
	return &bookRow{
		PassID:           passID,
		Mode:             mode,
		SimID:            b.ID,
		Criteria:         b.Criteria,
		PayoutMultiplier: b.PayoutMultiplier,
		BaseGameWins:     b.BaseGameWins.String(),
		FreeGameWins:     b.FreeGameWins.String(),
		Attempts:         b.Attempts,
		Events:           events,
	}, nil
}
