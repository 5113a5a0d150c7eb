package lotteryengine

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/rondomundi/backend/internal/entity"
	"github.com/rondomundi/backend/pkg/crypto"
)

// Replayed is a lottery reconstructed purely from its audit trail. External
// consumers use it to verify that a recorded draw really corresponds to the
// ticket set that existed at close time.
type Replayed struct {
	Lottery entity.Lottery
	Tickets []entity.LotteryTicket
	Result  *DrawResult

	// LedgerDigest is the digest recorded by the closed event, empty while
	// the lottery was still open.
	LedgerDigest string
}

// Replay folds an ordered audit event stream back into lottery state. It
// fails on any stream a live instance could not have produced: gaps in the
// event sequence, out-of-order phases, non-dense ticket numbers, or a drawn
// event whose winner is not in the reconstructed ledger.
func Replay(events []entity.LotteryAuditEvent) (*Replayed, error) {
	if len(events) == 0 {
		return nil, fmt.Errorf("empty audit stream")
	}

	var out Replayed
	for i := range events {
		ev := &events[i]
		if ev.Seq != int64(i)+1 {
			return nil, fmt.Errorf("audit sequence gap: got %d, want %d", ev.Seq, i+1)
		}

		if ev.LotteryID != events[0].LotteryID {
			return nil, fmt.Errorf("audit stream mixes lotteries %s and %s", events[0].LotteryID, ev.LotteryID)
		}

		if (ev.Kind == entity.AuditCreated) != (i == 0) {
			return nil, fmt.Errorf("created event must be first and only first")
		}

		switch ev.Kind {
		case entity.AuditCreated:
			var p CreatedPayload
			if err := decodePayload(ev.Payload, &p); err != nil {
				return nil, err
			}

			openTime, err := time.Parse(time.RFC3339Nano, p.OpenTime)
			if err != nil {
				return nil, fmt.Errorf("invalid open time: %w", err)
			}

			closeTime, err := time.Parse(time.RFC3339Nano, p.CloseTime)
			if err != nil {
				return nil, fmt.Errorf("invalid close time: %w", err)
			}

			out.Lottery = entity.Lottery{
				Base:        entity.Base{ID: ev.LotteryID},
				AdminWallet: p.AdminWallet,
				TicketPrice: p.TicketPrice,
				OpenTime:    openTime,
				CloseTime:   closeTime,
				Capacity:    p.Capacity,
				Phase:       entity.PhaseOpen,
			}

		case entity.AuditTicketIssued:
			if out.Lottery.Phase != entity.PhaseOpen {
				return nil, fmt.Errorf("ticket issued while lottery %s", out.Lottery.Phase)
			}

			var p TicketIssuedPayload
			if err := decodePayload(ev.Payload, &p); err != nil {
				return nil, err
			}

			if p.Seq != len(out.Tickets)+1 {
				return nil, fmt.Errorf("ticket sequence gap: got %d, want %d", p.Seq, len(out.Tickets)+1)
			}

			issuedAt, err := time.Parse(time.RFC3339Nano, p.IssuedAt)
			if err != nil {
				return nil, fmt.Errorf("invalid issuance time: %w", err)
			}

			out.Tickets = append(out.Tickets, entity.LotteryTicket{
				LotteryID: ev.LotteryID,
				Seq:       p.Seq,
				Wallet:    p.Wallet,
				IssuedAt:  issuedAt,
			})
			out.Lottery.PrizePool += out.Lottery.TicketPrice

		case entity.AuditClosed:
			if out.Lottery.Phase != entity.PhaseOpen {
				return nil, fmt.Errorf("closed while lottery %s", out.Lottery.Phase)
			}

			var p ClosedPayload
			if err := decodePayload(ev.Payload, &p); err != nil {
				return nil, err
			}

			if p.TicketCount != len(out.Tickets) {
				return nil, fmt.Errorf("closed with %d tickets, ledger has %d", p.TicketCount, len(out.Tickets))
			}

			if p.LedgerDigest != TicketDigest(out.Tickets) {
				return nil, fmt.Errorf("ledger digest mismatch at close")
			}

			out.Lottery.Phase = entity.PhaseClosed
			out.LedgerDigest = p.LedgerDigest

		case entity.AuditDrawn:
			if out.Lottery.Phase != entity.PhaseClosed {
				return nil, fmt.Errorf("drawn while lottery %s", out.Lottery.Phase)
			}

			var p DrawnPayload
			if err := decodePayload(ev.Payload, &p); err != nil {
				return nil, err
			}

			if p.WinningTicketSeq < 1 || p.WinningTicketSeq > len(out.Tickets) {
				return nil, fmt.Errorf("winning ticket %d does not exist", p.WinningTicketSeq)
			}

			winner := out.Tickets[p.WinningTicketSeq-1]
			if winner.Wallet != p.WinnerWallet {
				return nil, fmt.Errorf("winner wallet mismatch for ticket %d", p.WinningTicketSeq)
			}

			seed, err := hex.DecodeString(p.Seed)
			if err != nil {
				return nil, fmt.Errorf("invalid draw seed: %w", err)
			}

			drawnAt, err := time.Parse(time.RFC3339Nano, p.DrawnAt)
			if err != nil {
				return nil, fmt.Errorf("invalid draw time: %w", err)
			}

			out.Lottery.Phase = entity.PhaseDrawn
			out.Lottery.WinningTicketSeq = p.WinningTicketSeq
			out.Lottery.DrawSeed = p.Seed
			out.Lottery.DrawnAt = &drawnAt
			out.Result = &DrawResult{
				LotteryID:        ev.LotteryID,
				WinningTicketSeq: p.WinningTicketSeq,
				WinnerWallet:     p.WinnerWallet,
				Seed:             seed,
				DrawnAt:          drawnAt,
			}

		default:
			return nil, fmt.Errorf("unknown audit event kind %q", ev.Kind)
		}
	}

	return &out, nil
}

// VerifyDraw replays the stream and recomputes the winner from the recorded
// seed, confirming the stored result is the one the seed selects.
func VerifyDraw(events []entity.LotteryAuditEvent) (*Replayed, error) {
	replayed, err := Replay(events)
	if err != nil {
		return nil, err
	}

	if replayed.Result == nil {
		return nil, fmt.Errorf("lottery has not been drawn")
	}

	index, err := crypto.WinnerIndex(replayed.Result.Seed, len(replayed.Tickets))
	if err != nil {
		return nil, err
	}

	if want := replayed.Tickets[index].Seq; want != replayed.Result.WinningTicketSeq {
		return nil, fmt.Errorf("recorded winner %d, seed selects %d", replayed.Result.WinningTicketSeq, want)
	}

	return replayed, nil
}

// decodePayload turns an audit payload map back into its typed shape. The
// payload may come straight from a live instance or from a JSON column, so
// numbers are decoded weakly.
func decodePayload(m entity.Map, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      false,
	})
	if err != nil {
		return err
	}

	if err := dec.Decode(map[string]any(m)); err != nil {
		return fmt.Errorf("cannot decode audit payload: %w", err)
	}

	return nil
}
