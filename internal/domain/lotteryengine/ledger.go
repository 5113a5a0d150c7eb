package lotteryengine

import (
	"fmt"
	"strings"

	"github.com/rondomundi/backend/internal/entity"
	"github.com/rondomundi/backend/pkg/crypto"
)

// ticketLedger is the append-only ticket record of one lottery. It is owned
// by an Instance and must only be touched while holding that instance's
// lock; the invariant it keeps is that sequence numbers are exactly
// 1..count in issuance order.
type ticketLedger struct {
	tickets []entity.LotteryTicket
}

func (l *ticketLedger) count() int {
	return len(l.tickets)
}

func (l *ticketLedger) nextSeq() int {
	return len(l.tickets) + 1
}

func (l *ticketLedger) append(tickets ...entity.LotteryTicket) {
	l.tickets = append(l.tickets, tickets...)
}

// snapshot returns a point-in-time copy that stays stable after the lock is
// released.
func (l *ticketLedger) snapshot() []entity.LotteryTicket {
	cp := make([]entity.LotteryTicket, len(l.tickets))
	copy(cp, l.tickets)
	return cp
}

// digest fingerprints the current ticket set. The closed audit event
// records it so external consumers can verify a draw ran over exactly the
// tickets that existed at close time.
func (l *ticketLedger) digest() string {
	return TicketDigest(l.tickets)
}

// TicketDigest fingerprints an ordered ticket list by sequence number and
// wallet.
func TicketDigest(tickets []entity.LotteryTicket) string {
	var sb strings.Builder
	for i := range tickets {
		fmt.Fprintf(&sb, "%d:%s\n", tickets[i].Seq, tickets[i].Wallet)
	}

	return crypto.SHA256([]byte(sb.String()))
}
