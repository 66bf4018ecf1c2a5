package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/semiha11/Fincio/internal/models"
)

// Settings returns the current user settings.
func (l *Ledger) Settings() models.UserSettings {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.st.Settings
}

// UpdateSettings overlays patch on the settings.
func (l *Ledger) UpdateSettings(ctx context.Context, patch json.RawMessage) (models.UserSettings, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	next, err := applyPatch(l.st.Settings, patch)
	if err != nil {
		return l.st.Settings, invalid("settings", msgSettings)
	}
	if !finite(float64(next.BudgetLimitPercentage)) || next.BudgetLimitPercentage < 0 ||
		!finite(float64(next.BudgetLimitAmount)) || next.BudgetLimitAmount < 0 {
		return l.st.Settings, invalid("settings", msgSettings)
	}
	l.setSettingsLocked(ctx, next)
	l.count("update_settings")
	return next, nil
}

// UpdateBudgetLimitPercentage sets the budget as a share of regular income
// and drops any manual amount.
func (l *Ledger) UpdateBudgetLimitPercentage(ctx context.Context, pct float64) error {
	if !finite(pct) || pct < 0 {
		return invalid("budgetLimitPercentage", msgAmount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.st.Settings
	s.BudgetLimitPercentage = models.Amount(pct)
	s.BudgetLimitAmount = 0
	l.setSettingsLocked(ctx, s)
	l.count("update_budget_limit_percentage")
	return nil
}

// UpdateBudgetLimitAmount sets a manual budget base. Zero falls back to the
// percentage.
func (l *Ledger) UpdateBudgetLimitAmount(ctx context.Context, amount float64) error {
	if !finite(amount) || amount < 0 {
		return invalid("budgetLimitAmount", msgAmount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.st.Settings
	s.BudgetLimitAmount = models.Amount(amount)
	l.setSettingsLocked(ctx, s)
	l.count("update_budget_limit_amount")
	return nil
}

func (l *Ledger) setSettingsLocked(ctx context.Context, s models.UserSettings) {
	l.st.Settings = s
	l.persistLocked(ctx, KeyUserSettings)
	l.mirrorSettingsLocked()
}

// Profile returns the stored display identity.
func (l *Ledger) Profile() models.UserProfile {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.st.Profile
}

// SetUserProfile replaces the stored display identity.
func (l *Ledger) SetUserProfile(ctx context.Context, p models.UserProfile) error {
	if err := checkName(p.Name); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.st.Profile = p
	l.persistLocked(ctx, KeyUserProfile)
	l.count("set_user_profile")
	return nil
}

// SetFirstLoginDone records that onboarding has been shown.
func (l *Ledger) SetFirstLoginDone(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.st.FirstLoginDone = true
	l.persistLocked(ctx, KeyFirstLogin)
}

func notificationID(n models.Notification) string { return n.ID }

// Notifications lists notifications, newest first. An empty filter returns all.
func (l *Ledger) Notifications(filter models.NotificationType) []models.Notification {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.Notification, 0, len(l.st.Notifications))
	for _, n := range l.st.Notifications {
		if filter == "" || n.Type == filter {
			out = append(out, n)
		}
	}
	return out
}

// UnreadCount returns the number of unread notifications.
func (l *Ledger) UnreadCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, item := range l.st.Notifications {
		if !item.IsRead {
			n++
		}
	}
	return n
}

// AddNotification puts a new unread notification at the head of the list.
func (l *Ledger) AddNotification(ctx context.Context, n models.Notification) (models.Notification, error) {
	if err := checkName(n.Title); err != nil {
		return n, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	n = l.notifyLocked(ctx, n)
	return n, nil
}

func (l *Ledger) notifyLocked(ctx context.Context, n models.Notification) models.Notification {
	n.ID = l.newID()
	n.IsRead = false
	if n.Time == "" {
		n.Time = l.timestamp()
	}
	items := make([]models.Notification, 0, len(l.st.Notifications)+1)
	l.st.Notifications = append(append(items, n), l.st.Notifications...)
	l.persistLocked(ctx, KeyNotifications)
	l.count("notify_" + string(n.Type))
	return n
}

// MarkAsRead flags one notification as read.
func (l *Ledger) MarkAsRead(ctx context.Context, id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := indexByID(l.st.Notifications, id, notificationID)
	if i < 0 || l.st.Notifications[i].IsRead {
		return
	}
	items := cloneSlice(l.st.Notifications)
	items[i].IsRead = true
	l.st.Notifications = items
	l.persistLocked(ctx, KeyNotifications)
}

// MarkAllAsRead flags every notification as read.
func (l *Ledger) MarkAllAsRead(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	items := cloneSlice(l.st.Notifications)
	for i := range items {
		items[i].IsRead = true
	}
	l.st.Notifications = items
	l.persistLocked(ctx, KeyNotifications)
}

// DeleteNotification removes one notification.
func (l *Ledger) DeleteNotification(ctx context.Context, id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	items, found := removeByID(l.st.Notifications, id, notificationID)
	if !found {
		return
	}
	l.st.Notifications = items
	l.persistLocked(ctx, KeyNotifications)
}

func goalID(g models.Goal) string { return g.ID }

// AddGoal appends a savings goal.
func (l *Ledger) AddGoal(ctx context.Context, g models.Goal) (models.Goal, error) {
	if err := checkName(g.Name); err != nil {
		return g, err
	}
	if err := checkAmount(g.Target); err != nil {
		return g, err
	}
	if err := checkNonNegative("current", g.Current); err != nil {
		return g, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	g.ID = l.newID()
	l.st.Goals = append(cloneSlice(l.st.Goals), g)
	l.persistLocked(ctx, KeyGoals)
	l.mirrorAddLocked(CollGoals, g)
	l.count("add_goal")
	return g, nil
}

// UpdateGoal overlays patch on the goal with id.
func (l *Ledger) UpdateGoal(ctx context.Context, id string, patch json.RawMessage) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := indexByID(l.st.Goals, id, goalID)
	if i < 0 {
		return nil
	}
	next, err := applyPatch(l.st.Goals[i], patch)
	if err != nil {
		return err
	}
	next.ID = id
	if err := checkName(next.Name); err != nil {
		return err
	}
	if err := checkAmount(next.Target); err != nil {
		return err
	}
	if err := checkNonNegative("current", next.Current); err != nil {
		return err
	}
	items := cloneSlice(l.st.Goals)
	items[i] = next
	l.st.Goals = items
	l.persistLocked(ctx, KeyGoals)
	l.mirrorUpdateLocked(CollGoals, id, next)
	l.count("update_goal")
	return nil
}

// DeleteGoal removes the goal with id.
func (l *Ledger) DeleteGoal(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	items, found := removeByID(l.st.Goals, id, goalID)
	if !found {
		return nil
	}
	l.st.Goals = items
	l.persistLocked(ctx, KeyGoals)
	l.mirrorDeleteLocked(CollGoals, id)
	l.count("delete_goal")
	return nil
}

func accountID(a models.Account) string { return a.ID }

// AddAccount appends a tracked account.
func (l *Ledger) AddAccount(ctx context.Context, a models.Account) (models.Account, error) {
	if err := checkName(a.Name); err != nil {
		return a, err
	}
	if !finite(a.Balance.Float64()) {
		return a, invalid("balance", msgAmount)
	}
	if a.Currency == "" {
		a.Currency = "TRY"
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	a.ID = l.newID()
	l.st.Accounts = append(cloneSlice(l.st.Accounts), a)
	l.persistLocked(ctx, KeyAccounts)
	l.mirrorAddLocked(CollAccounts, a)
	l.count("add_account")
	return a, nil
}

// UpdateAccount overlays patch on the account with id.
func (l *Ledger) UpdateAccount(ctx context.Context, id string, patch json.RawMessage) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := indexByID(l.st.Accounts, id, accountID)
	if i < 0 {
		return nil
	}
	next, err := applyPatch(l.st.Accounts[i], patch)
	if err != nil {
		return err
	}
	next.ID = id
	if err := checkName(next.Name); err != nil {
		return err
	}
	if !finite(next.Balance.Float64()) {
		return invalid("balance", msgAmount)
	}
	items := cloneSlice(l.st.Accounts)
	items[i] = next
	l.st.Accounts = items
	l.persistLocked(ctx, KeyAccounts)
	l.mirrorUpdateLocked(CollAccounts, id, next)
	l.count("update_account")
	return nil
}

// DeleteAccount removes the account with id.
func (l *Ledger) DeleteAccount(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	items, found := removeByID(l.st.Accounts, id, accountID)
	if !found {
		return nil
	}
	l.st.Accounts = items
	l.persistLocked(ctx, KeyAccounts)
	l.mirrorDeleteLocked(CollAccounts, id)
	l.count("delete_account")
	return nil
}

func budgetID(b models.Budget) string { return b.ID }

// AddBudget appends a category budget.
func (l *Ledger) AddBudget(ctx context.Context, b models.Budget) (models.Budget, error) {
	if err := checkName(b.Category); err != nil {
		return b, err
	}
	if err := checkAmount(b.Limit); err != nil {
		return b, err
	}
	if err := checkNonNegative("spent", b.Spent); err != nil {
		return b, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	b.ID = l.newID()
	l.st.Budgets = append(cloneSlice(l.st.Budgets), b)
	l.persistLocked(ctx, KeyBudgets)
	l.mirrorAddLocked(CollBudgets, b)
	l.count("add_budget")
	return b, nil
}

// UpdateBudget overlays patch on the budget with id.
func (l *Ledger) UpdateBudget(ctx context.Context, id string, patch json.RawMessage) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := indexByID(l.st.Budgets, id, budgetID)
	if i < 0 {
		return nil
	}
	next, err := applyPatch(l.st.Budgets[i], patch)
	if err != nil {
		return err
	}
	next.ID = id
	if err := checkAmount(next.Limit); err != nil {
		return err
	}
	if err := checkNonNegative("spent", next.Spent); err != nil {
		return err
	}
	items := cloneSlice(l.st.Budgets)
	items[i] = next
	l.st.Budgets = items
	l.persistLocked(ctx, KeyBudgets)
	l.mirrorUpdateLocked(CollBudgets, id, next)
	l.count("update_budget")
	return nil
}

// DeleteBudget removes the budget with id.
func (l *Ledger) DeleteBudget(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	items, found := removeByID(l.st.Budgets, id, budgetID)
	if !found {
		return nil
	}
	l.st.Budgets = items
	l.persistLocked(ctx, KeyBudgets)
	l.mirrorDeleteLocked(CollBudgets, id)
	l.count("delete_budget")
	return nil
}

// UpdatePayYourselfRule replaces the pay-yourself-first rule.
func (l *Ledger) UpdatePayYourselfRule(ctx context.Context, r models.PayYourselfRule) error {
	if !finite(float64(r.Percent)) || r.Percent < 0 || r.Percent > 100 ||
		!finite(float64(r.Amount)) || r.Amount < 0 {
		return invalid("payYourselfRule", msgAmount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.st.PayYourselfRule = r
	l.persistLocked(ctx, KeyPayYourselfRule)
	l.count("update_pay_yourself_rule")
	return nil
}

// ResetAllFinancialData returns the profile to a fresh installation: every
// store back to its default, every stored key removed, and a new tenure
// start date. Calling it twice leaves the same state as calling it once.
func (l *Ledger) ResetAllFinancialData(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	keys := make([]string, len(AllKeys))
	for i, k := range AllKeys {
		keys[i] = string(k)
	}
	l.st = defaultState()
	now := l.now()
	l.st.StartDate = &now
	if err := l.kv.MultiRemove(ctx, keys); err != nil {
		return fmt.Errorf("failed to clear stored data: %w", err)
	}
	l.persistLocked(ctx, KeyStartDate)
	l.count("reset")
	l.log.Info("All financial data reset")
	return nil
}
