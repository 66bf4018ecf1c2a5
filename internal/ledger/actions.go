package ledger

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/semiha11/Fincio/internal/metrics"
	"github.com/semiha11/Fincio/internal/models"
)

const (
	iconDebtPayment = "📉"
	iconDebtPayoff  = "🎉"
	iconDebt        = "💳"
	iconExpense     = "💸"
)

func (l *Ledger) count(action string) {
	metrics.Actions.WithLabelValues(action).Inc()
}

// applyPatch overlays a JSON patch on a copy of cur.
func applyPatch[T any](cur T, patch json.RawMessage) (T, error) {
	next := cur
	if err := json.Unmarshal(patch, &next); err != nil {
		return cur, invalid("body", msgInvalidData)
	}
	return next, nil
}

func (l *Ledger) timestamp() string {
	return l.now().Format(time.RFC3339)
}

func incomeKey(list models.ListType) (Key, string, bool) {
	switch list {
	case models.Regular:
		return KeyRegularIncome, CollRegularIncome, true
	case models.Irregular:
		return KeyIrregularIncome, CollIrregularIncome, true
	}
	return "", "", false
}

func (s *State) incomeList(list models.ListType) *[]models.IncomeItem {
	if list == models.Irregular {
		return &s.IrregularIncome
	}
	return &s.RegularIncome
}

func incomeID(i models.IncomeItem) string { return i.ID }

// AddIncome appends item to the regular or irregular store.
func (l *Ledger) AddIncome(ctx context.Context, item models.IncomeItem, list models.ListType) (models.IncomeItem, error) {
	if err := checkName(item.Name); err != nil {
		return item, err
	}
	if err := checkAmount(item.Amount); err != nil {
		return item, err
	}
	if _, _, ok := incomeKey(list); !ok {
		return item, invalid("type", msgListType)
	}
	if item.IncomeType == "" {
		item.IncomeType = models.ActiveIncome
	}
	if item.Date == "" {
		item.Date = l.timestamp()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	item.ID = l.newID()
	l.addIncomeLocked(ctx, item, list)
	l.count("add_income")
	return item, nil
}

func (l *Ledger) addIncomeLocked(ctx context.Context, item models.IncomeItem, list models.ListType) {
	key, coll, _ := incomeKey(list)
	item.ListType = list
	store := l.st.incomeList(list)
	*store = append(cloneSlice(*store), item)
	l.persistLocked(ctx, key)
	l.mirrorAddLocked(coll, item)
}

// UpdateIncome overlays patch on the income item with id. Unknown ids are
// ignored.
func (l *Ledger) UpdateIncome(ctx context.Context, id string, list models.ListType, patch json.RawMessage) error {
	key, coll, ok := incomeKey(list)
	if !ok {
		return invalid("type", msgListType)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	store := l.st.incomeList(list)
	i := indexByID(*store, id, incomeID)
	if i < 0 {
		l.log.WithField("id", id).Debug("Income not found")
		return nil
	}
	next, err := applyPatch((*store)[i], patch)
	if err != nil {
		return err
	}
	next.ID, next.ListType = id, list
	if err := checkName(next.Name); err != nil {
		return err
	}
	if err := checkAmount(next.Amount); err != nil {
		return err
	}
	items := cloneSlice(*store)
	items[i] = next
	*store = items
	l.persistLocked(ctx, key)
	l.mirrorUpdateLocked(coll, id, next)
	l.count("update_income")
	return nil
}

// DeleteIncome removes the income item with id from the given store.
func (l *Ledger) DeleteIncome(ctx context.Context, id string, list models.ListType) error {
	key, coll, ok := incomeKey(list)
	if !ok {
		return invalid("type", msgListType)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	store := l.st.incomeList(list)
	items, found := removeByID(*store, id, incomeID)
	if !found {
		return nil
	}
	*store = items
	l.persistLocked(ctx, key)
	l.mirrorDeleteLocked(coll, id)
	l.count("delete_income")
	return nil
}

// AddTransaction records an expense at the head of the transaction store.
func (l *Ledger) AddTransaction(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	if err := checkName(tx.Name); err != nil {
		return tx, err
	}
	if err := checkAmount(tx.Amount); err != nil {
		return tx, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	tx = l.addTransactionLocked(ctx, tx)
	l.count("add_transaction")
	return tx, nil
}

func (l *Ledger) addTransactionLocked(ctx context.Context, tx models.Transaction) models.Transaction {
	tx.ID = l.newID()
	if tx.Timestamp.IsZero() {
		tx.Timestamp = l.now()
	}
	if tx.Date == "" {
		tx.Date = tx.Timestamp.Format(time.RFC3339)
	}
	if tx.Icon == "" {
		tx.Icon = iconExpense
	}
	l.expenseLocked(ctx, func() {
		txs := make([]models.Transaction, 0, len(l.st.Transactions)+1)
		l.st.Transactions = append(append(txs, tx), l.st.Transactions...)
	})
	l.persistLocked(ctx, KeyTransactions)
	l.mirrorAddLocked(CollTransactions, tx)
	return tx
}

// expenseLocked applies an expense and raises a spending alert when it
// takes the remaining budget below zero.
func (l *Ledger) expenseLocked(ctx context.Context, apply func()) {
	before := Summarize(&l.st).RemainingBudget
	apply()
	after := Summarize(&l.st).RemainingBudget
	if before >= 0 && after < 0 {
		l.notifyLocked(ctx, models.Notification{
			Type:  models.NotifySpending,
			Title: "Bütçe Aşıldı",
			Desc:  "Bu dönem için belirlediğiniz harcama limitini aştınız.",
		})
	}
}

func recurringID(p models.RecurringPayment) string { return p.ID }

// AddRecurringPayment appends a recurring obligation.
func (l *Ledger) AddRecurringPayment(ctx context.Context, p models.RecurringPayment) (models.RecurringPayment, error) {
	if err := checkName(p.Name); err != nil {
		return p, err
	}
	if err := checkAmount(p.Amount); err != nil {
		return p, err
	}
	if p.Type == "" {
		p.Type = models.PaymentFixed
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	p.ID = l.newID()
	l.expenseLocked(ctx, func() {
		l.st.RecurringPayments = append(cloneSlice(l.st.RecurringPayments), p)
	})
	l.persistLocked(ctx, KeyRecurringPayments)
	l.mirrorAddLocked(CollRecurringPayments, p)
	l.count("add_recurring_payment")
	return p, nil
}

// UpdateRecurringPayment overlays patch on the payment with id.
func (l *Ledger) UpdateRecurringPayment(ctx context.Context, id string, patch json.RawMessage) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := indexByID(l.st.RecurringPayments, id, recurringID)
	if i < 0 {
		return nil
	}
	next, err := applyPatch(l.st.RecurringPayments[i], patch)
	if err != nil {
		return err
	}
	next.ID = id
	if err := checkName(next.Name); err != nil {
		return err
	}
	if err := checkAmount(next.Amount); err != nil {
		return err
	}
	items := cloneSlice(l.st.RecurringPayments)
	items[i] = next
	l.st.RecurringPayments = items
	l.persistLocked(ctx, KeyRecurringPayments)
	l.mirrorUpdateLocked(CollRecurringPayments, id, next)
	l.count("update_recurring_payment")
	return nil
}

// DeleteRecurringPayment removes the payment with id.
func (l *Ledger) DeleteRecurringPayment(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	items, found := removeByID(l.st.RecurringPayments, id, recurringID)
	if !found {
		return nil
	}
	l.st.RecurringPayments = items
	l.persistLocked(ctx, KeyRecurringPayments)
	l.mirrorDeleteLocked(CollRecurringPayments, id)
	l.count("delete_recurring_payment")
	return nil
}

func extraID(p models.ExtraPayment) string { return p.ID }

// AddExtraPayment appends a one-off payment.
func (l *Ledger) AddExtraPayment(ctx context.Context, p models.ExtraPayment) (models.ExtraPayment, error) {
	if err := checkName(p.Name); err != nil {
		return p, err
	}
	if err := checkAmount(p.Amount); err != nil {
		return p, err
	}
	p.Type = models.ExtraPaymentType
	if p.Date == "" {
		p.Date = l.timestamp()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	p.ID = l.newID()
	l.expenseLocked(ctx, func() {
		l.st.ExtraPayments = append(cloneSlice(l.st.ExtraPayments), p)
	})
	l.persistLocked(ctx, KeyExtraPayments)
	l.mirrorAddLocked(CollExtraPayments, p)
	l.count("add_extra_payment")
	return p, nil
}

// UpdateExtraPayment overlays patch on the payment with id.
func (l *Ledger) UpdateExtraPayment(ctx context.Context, id string, patch json.RawMessage) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := indexByID(l.st.ExtraPayments, id, extraID)
	if i < 0 {
		return nil
	}
	next, err := applyPatch(l.st.ExtraPayments[i], patch)
	if err != nil {
		return err
	}
	next.ID, next.Type = id, models.ExtraPaymentType
	if err := checkName(next.Name); err != nil {
		return err
	}
	if err := checkAmount(next.Amount); err != nil {
		return err
	}
	items := cloneSlice(l.st.ExtraPayments)
	items[i] = next
	l.st.ExtraPayments = items
	l.persistLocked(ctx, KeyExtraPayments)
	l.mirrorUpdateLocked(CollExtraPayments, id, next)
	l.count("update_extra_payment")
	return nil
}

// DeleteExtraPayment removes the payment with id.
func (l *Ledger) DeleteExtraPayment(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	items, found := removeByID(l.st.ExtraPayments, id, extraID)
	if !found {
		return nil
	}
	l.st.ExtraPayments = items
	l.persistLocked(ctx, KeyExtraPayments)
	l.mirrorDeleteLocked(CollExtraPayments, id)
	l.count("delete_extra_payment")
	return nil
}

func debtID(d models.Debt) string { return d.ID }

// AddDebt registers an active debt. A remaining amount that is unset or above
// the total starts at the total.
func (l *Ledger) AddDebt(ctx context.Context, d models.Debt) (models.Debt, error) {
	if err := checkName(d.Name); err != nil {
		return d, err
	}
	if !positive(float64(d.TotalAmount)) {
		return d, invalid("totalAmount", msgAmount)
	}
	if !finite(float64(d.RemainingAmount)) || d.RemainingAmount <= 0 || d.RemainingAmount > d.TotalAmount {
		d.RemainingAmount = d.TotalAmount
	}
	if d.Icon == "" {
		d.Icon = iconDebt
	}
	d.Status = models.DebtActive
	d.CompletedDate = nil

	l.mu.Lock()
	defer l.mu.Unlock()
	d.ID = l.newID()
	l.st.Debts = append(cloneSlice(l.st.Debts), d)
	l.persistLocked(ctx, KeyDebts)
	l.mirrorAddLocked(CollDebts, d)
	l.mirrorFinancialLocked()
	l.count("add_debt")
	return d, nil
}

// DeleteDebt removes the debt with id.
func (l *Ledger) DeleteDebt(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	items, found := removeByID(l.st.Debts, id, debtID)
	if !found {
		return nil
	}
	l.st.Debts = items
	l.persistLocked(ctx, KeyDebts)
	l.mirrorDeleteLocked(CollDebts, id)
	l.mirrorFinancialLocked()
	l.count("delete_debt")
	return nil
}

// PayDebt pays amount toward a debt. Without debtID the first active debt in
// store order is reduced. The money leaves either the asset pool (source
// asset) or the budget as a debt payment expense; exactly one of the two
// happens even when no debt matches.
func (l *Ledger) PayDebt(ctx context.Context, amount float64, description, debtID string, source models.PaymentSource) error {
	if !positive(amount) {
		return invalid("amount", msgAmount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	i := -1
	if debtID != "" {
		i = indexByID(l.st.Debts, debtID, func(d models.Debt) string { return d.ID })
	} else {
		for j, d := range l.st.Debts {
			if d.Status == models.DebtActive {
				i = j
				break
			}
		}
	}
	if i >= 0 && !l.st.Debts[i].IsPaid() {
		debts := cloneSlice(l.st.Debts)
		d := debts[i]
		d.RemainingAmount = models.Amount(math.Max(0, num(d.RemainingAmount)-amount))
		debts[i] = d
		l.st.Debts = debts
		l.persistLocked(ctx, KeyDebts)
		l.mirrorUpdateLocked(CollDebts, d.ID, map[string]any{"remainingAmount": d.RemainingAmount})
	} else {
		l.log.WithField("id", debtID).Debug("No debt to reduce")
	}

	name := description
	if name == "" {
		name = models.CategoryDebtPayment
	}
	l.settleLocked(ctx, amount, name, iconDebtPayment, source)
	l.mirrorFinancialLocked()
	l.count("pay_debt")
	return nil
}

// PayOffDebt closes the debt with id, paying its remaining amount from
// source. Unknown or already paid debts are ignored.
func (l *Ledger) PayOffDebt(ctx context.Context, id string, source models.PaymentSource) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := indexByID(l.st.Debts, id, debtID)
	if i < 0 || l.st.Debts[i].IsPaid() {
		l.log.WithField("id", id).Debug("No open debt to pay off")
		return nil
	}
	debts := cloneSlice(l.st.Debts)
	d := debts[i]
	toPay := num(d.RemainingAmount)
	now := l.now()
	d.RemainingAmount = 0
	d.Status = models.DebtPaid
	d.CompletedDate = &now
	debts[i] = d
	l.st.Debts = debts
	l.persistLocked(ctx, KeyDebts)
	l.mirrorUpdateLocked(CollDebts, d.ID, map[string]any{
		"remainingAmount": 0,
		"status":          models.DebtPaid,
		"completedDate":   now,
	})

	if toPay > 0 {
		l.settleLocked(ctx, toPay, d.Name+" Kapatma", iconDebtPayoff, source)
	}
	l.mirrorFinancialLocked()
	l.count("pay_off_debt")
	return nil
}

// settleLocked moves a debt payment out of the asset pool or the budget.
func (l *Ledger) settleLocked(ctx context.Context, amount float64, name, icon string, source models.PaymentSource) {
	if source == models.SourceAsset {
		l.addToAssetsLocked(ctx, -amount)
		return
	}
	l.addTransactionLocked(ctx, models.Transaction{
		Name:     name,
		Category: models.CategoryDebtPayment,
		Amount:   models.Amount(amount),
		Icon:     icon,
	})
}
