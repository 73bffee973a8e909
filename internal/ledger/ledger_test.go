package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schooladmin/internal/calendar"
)

var now = time.Date(2024, time.June, 5, 10, 0, 0, 0, time.UTC)

func TestSeedFlatRate(t *testing.T) {
	l := Seed(500, 0, now)
	require.Len(t, l, 12)
	for _, m := range calendar.AcademicMonths {
		assert.Equal(t, Entry{Total: 500}, l[m], m)
	}
}

func TestSeedWithPaidAmount(t *testing.T) {
	l := Seed(500, 1500, now)
	for i, m := range calendar.AcademicMonths {
		e := l[m]
		assert.Equal(t, 500.0, e.Total, m)
		if i < 3 {
			assert.Equal(t, 500.0, e.Paid, m)
			assert.True(t, e.Settled(), m)
			require.NotNil(t, e.PaidAt)
		} else {
			assert.Equal(t, 0.0, e.Paid, m)
			assert.Nil(t, e.PaidAt)
		}
	}
	assert.True(t, l["April"].Settled())
	assert.True(t, l["June"].Settled())
	assert.False(t, l["July"].Settled())
}

func TestSeedDropsRemainder(t *testing.T) {
	l := Seed(500, 1499, now)
	assert.True(t, l["May"].Settled())
	assert.Equal(t, 0.0, l["June"].Paid)
}

func TestSeedZeroFee(t *testing.T) {
	l := Seed(0, 1000, now)
	for _, m := range calendar.AcademicMonths {
		assert.False(t, l[m].Settled())
	}
}

func TestPay(t *testing.T) {
	l := Seed(500, 0, now)

	e, err := l.Pay("May", 600, now)
	require.NoError(t, err)
	assert.Equal(t, 600.0, e.Total)
	assert.Equal(t, e.Total, e.Paid)
	require.NotNil(t, e.PaidAt)
	assert.Equal(t, now, *e.PaidAt)
	assert.Equal(t, e, l["May"])

	_, err = l.Pay("May", 600, now.Add(time.Hour))
	assert.ErrorIs(t, err, ErrAlreadyPaid)
	assert.Equal(t, now, *l["May"].PaidAt)
}

func TestPayKeepsTotalWithoutCurrent(t *testing.T) {
	l := Seed(450, 0, now)
	e, err := l.Pay("April", 0, now)
	require.NoError(t, err)
	assert.Equal(t, Entry{Total: 450, Paid: 450, PaidAt: e.PaidAt}, e)
}

func TestPayZeroTotalStaysUnsettled(t *testing.T) {
	l := Ledger{}
	e, err := l.Pay("April", 0, now)
	require.NoError(t, err)
	assert.False(t, e.Settled())

	_, err = l.Pay("April", 0, now)
	assert.NoError(t, err, "a zero total is always considered unpaid")
}

func TestPayUnknownMonth(t *testing.T) {
	_, err := Ledger{}.Pay("Sept", 100, now)
	assert.ErrorIs(t, err, calendar.ErrUnknownMonth)
}

func TestCredit(t *testing.T) {
	l := Ledger{}
	e, err := l.Credit("April", 15000, now)
	require.NoError(t, err)
	assert.Equal(t, 15000.0, e.Total)
	assert.Equal(t, 15000.0, e.Paid)
	assert.NotNil(t, e.PaidAt)
	assert.Len(t, l, 1, "salary months are created lazily")

	_, err = l.Credit("April", 15000, now)
	assert.ErrorIs(t, err, ErrAlreadyPaid)
}

func TestStatement(t *testing.T) {
	l := Seed(500, 1000, now)
	delete(l, "March")
	s := NewStatement(l)

	require.Len(t, s.Lines, 12)
	assert.Equal(t, "April", s.Lines[0].Month)
	assert.Equal(t, "March", s.Lines[11].Month)
	assert.False(t, s.Lines[11].Present)
	assert.Equal(t, 1000.0, s.Collected)
	assert.Equal(t, 4500.0, s.Due)
}

func TestPaths(t *testing.T) {
	total, paid, paidAt := Paths("fees", "June")
	assert.Equal(t, "fees.June.total", total)
	assert.Equal(t, "fees.June.paid", paid)
	assert.Equal(t, "fees.June.paidAt", paidAt)
}
