package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/semiha11/Fincio/internal/models"
)

// Remote collections and single-document paths.
const (
	CollTransactions      = "transactions"
	CollRegularIncome     = "regularIncome"
	CollIrregularIncome   = "irregularIncome"
	CollRecurringPayments = "recurringPayments"
	CollExtraPayments     = "extraPayments"
	CollDebts             = "debts"
	CollAssets            = "assets"
	CollGoals             = "goals"
	CollBudgets           = "budgets"
	CollAccounts          = "accounts"

	DocSettings      = "settings/preferences"
	DocFinancialData = "financialData/summary"
)

// Load reads every store from local storage. Until it finishes nothing is
// written back, so startup defaults never clobber stored data. A store that
// fails to decode keeps its default. On first run the tenure start date is
// set and persisted immediately.
func (l *Ledger) Load(ctx context.Context) error {
	l.mu.Lock()
	if l.phase != unloaded {
		l.mu.Unlock()
		return nil
	}
	l.phase = loading
	l.mu.Unlock()

	st := defaultState()
	for _, k := range AllKeys {
		if err := ctx.Err(); err != nil {
			l.mu.Lock()
			l.phase = unloaded
			l.mu.Unlock()
			return fmt.Errorf("failed to load data: %w", err)
		}
		raw, ok, err := l.kv.Get(ctx, string(k))
		if err != nil {
			l.log.WithError(err).WithField("key", k).Error("Failed to read store")
			continue
		}
		if !ok {
			continue
		}
		if err := json.Unmarshal([]byte(raw), st.field(k)); err != nil {
			l.log.WithError(err).WithField("key", k).Error("Failed to decode store, using default")
			def := defaultState()
			b, _ := json.Marshal(def.field(k))
			_ = json.Unmarshal(b, st.field(k))
		}
	}

	l.mu.Lock()
	l.st = st
	l.phase = loaded
	if l.st.StartDate == nil {
		now := l.now()
		l.st.StartDate = &now
		l.persistLocked(ctx, KeyStartDate)
	}
	userID := l.userID
	l.mu.Unlock()

	if userID != "" {
		l.pull(ctx, userID)
	}
	return nil
}

// persistLocked writes the named stores through to local storage.
// Write failures are logged; the in-memory state stays authoritative.
func (l *Ledger) persistLocked(ctx context.Context, keys ...Key) {
	if l.phase != loaded {
		return
	}
	for _, k := range keys {
		raw, err := json.Marshal(l.st.field(k))
		if err != nil {
			l.log.WithError(err).WithField("key", k).Error("Failed to encode store")
			continue
		}
		if err := l.kv.Set(ctx, string(k), string(raw)); err != nil {
			l.log.WithError(err).WithField("key", k).Error("Failed to persist store")
		}
	}
}

// SignIn attaches a sync identity. The first sign-in of a loaded ledger pulls
// the remote snapshot once; later calls with the same identity do nothing.
func (l *Ledger) SignIn(ctx context.Context, userID string) {
	if userID == "" {
		return
	}
	l.mu.Lock()
	if l.userID == userID && l.pulled {
		l.mu.Unlock()
		return
	}
	if l.userID != userID {
		l.pulled = false
	}
	l.userID = userID
	ready := l.phase == loaded
	l.mu.Unlock()

	if ready {
		l.pull(ctx, userID)
	}
}

// SignOut returns the ledger to local-only mode.
func (l *Ledger) SignOut() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.userID = ""
	l.pulled = false
}

func (l *Ledger) pull(ctx context.Context, userID string) {
	if l.mirror == nil {
		return
	}
	snap := l.fetchSnapshot(ctx, userID)
	if err := ctx.Err(); err != nil {
		l.log.WithError(err).Warn("Remote sync interrupted")
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.userID != userID || l.pulled {
		return
	}
	l.pulled = true
	l.mergeLocked(ctx, snap)
	l.log.WithField("user", userID).Info("Data synced from remote store")
}

// Snapshot is the remote copy of the stores. Settings and FinancialData are
// raw documents merged field by field; nil means the document is absent.
type Snapshot struct {
	Transactions      []models.Transaction
	RegularIncome     []models.IncomeItem
	IrregularIncome   []models.IncomeItem
	RecurringPayments []models.RecurringPayment
	ExtraPayments     []models.ExtraPayment
	Debts             []models.Debt
	Assets            []models.Asset
	Goals             []models.Goal
	Budgets           []models.Budget
	Accounts          []models.Account
	Settings          json.RawMessage
	FinancialData     json.RawMessage
}

// fetchSnapshot reads every remote collection. A failing collection is
// logged and treated as empty so it cannot overwrite local data.
func (l *Ledger) fetchSnapshot(ctx context.Context, userID string) Snapshot {
	var snap Snapshot
	fetch := func(coll string, into func([]json.RawMessage) error) {
		docs, err := l.mirror.List(ctx, userID, coll)
		if err == nil {
			err = into(docs)
		}
		if err != nil {
			l.log.WithError(err).WithField("collection", coll).Warn("Failed to fetch remote collection")
		}
	}
	fetch(CollTransactions, decodeInto(&snap.Transactions))
	fetch(CollRegularIncome, decodeInto(&snap.RegularIncome))
	fetch(CollIrregularIncome, decodeInto(&snap.IrregularIncome))
	fetch(CollRecurringPayments, decodeInto(&snap.RecurringPayments))
	fetch(CollExtraPayments, decodeInto(&snap.ExtraPayments))
	fetch(CollDebts, decodeInto(&snap.Debts))
	fetch(CollAssets, decodeInto(&snap.Assets))
	fetch(CollGoals, decodeInto(&snap.Goals))
	fetch(CollBudgets, decodeInto(&snap.Budgets))
	fetch(CollAccounts, decodeInto(&snap.Accounts))

	for path, dst := range map[string]*json.RawMessage{
		DocSettings:      &snap.Settings,
		DocFinancialData: &snap.FinancialData,
	} {
		doc, ok, err := l.mirror.Get(ctx, userID, path)
		if err != nil {
			l.log.WithError(err).WithField("document", path).Warn("Failed to fetch remote document")
			continue
		}
		if ok {
			*dst = doc
		}
	}
	return snap
}

func decodeInto[T any](dst *[]T) func([]json.RawMessage) error {
	return func(docs []json.RawMessage) error {
		out := make([]T, 0, len(docs))
		for _, d := range docs {
			var v T
			if err := json.Unmarshal(d, &v); err != nil {
				return fmt.Errorf("failed to decode document: %w", err)
			}
			out = append(out, v)
		}
		*dst = out
		return nil
	}
}

// MergeRemote applies a remote snapshot. A non-empty remote collection
// replaces the local store; an empty one never overwrites local data.
func (l *Ledger) MergeRemote(ctx context.Context, snap Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mergeLocked(ctx, snap)
}

func (l *Ledger) mergeLocked(ctx context.Context, snap Snapshot) {
	var dirty []Key
	replace := func(n int, k Key, apply func()) {
		if n > 0 {
			apply()
			dirty = append(dirty, k)
		}
	}

	replace(len(snap.Transactions), KeyTransactions, func() {
		txs := cloneSlice(snap.Transactions)
		sort.SliceStable(txs, func(i, j int) bool { return txs[i].Timestamp.After(txs[j].Timestamp) })
		l.st.Transactions = txs
	})
	replace(len(snap.RegularIncome), KeyRegularIncome, func() { l.st.RegularIncome = cloneSlice(snap.RegularIncome) })
	replace(len(snap.IrregularIncome), KeyIrregularIncome, func() { l.st.IrregularIncome = cloneSlice(snap.IrregularIncome) })
	replace(len(snap.RecurringPayments), KeyRecurringPayments, func() { l.st.RecurringPayments = cloneSlice(snap.RecurringPayments) })
	replace(len(snap.ExtraPayments), KeyExtraPayments, func() { l.st.ExtraPayments = cloneSlice(snap.ExtraPayments) })
	replace(len(snap.Debts), KeyDebts, func() { l.st.Debts = cloneSlice(snap.Debts) })
	replace(len(snap.Assets), KeyAssets, func() { l.st.Assets = cloneSlice(snap.Assets) })
	replace(len(snap.Goals), KeyGoals, func() { l.st.Goals = cloneSlice(snap.Goals) })
	replace(len(snap.Budgets), KeyBudgets, func() { l.st.Budgets = cloneSlice(snap.Budgets) })
	replace(len(snap.Accounts), KeyAccounts, func() { l.st.Accounts = cloneSlice(snap.Accounts) })

	if len(snap.Settings) > 0 {
		s := l.st.Settings
		if err := json.Unmarshal(snap.Settings, &s); err != nil {
			l.log.WithError(err).Warn("Ignoring malformed remote settings")
		} else {
			l.st.Settings = s
			dirty = append(dirty, KeyUserSettings)
		}
	}
	if len(snap.FinancialData) > 0 {
		fd := l.st.FinancialData
		if err := json.Unmarshal(snap.FinancialData, &fd); err != nil {
			l.log.WithError(err).Warn("Ignoring malformed remote financial data")
		} else {
			l.st.FinancialData = fd
			dirty = append(dirty, KeyFinancialData)
		}
	}

	l.persistLocked(ctx, dirty...)
}

// mirrorLocked hands a remote write to the dispatcher. It is a no-op in
// local-only mode. The local change is already committed when it runs.
func (l *Ledger) mirrorLocked(name string, write func(ctx context.Context, m Mirror, userID string) error) {
	if l.mirror == nil || l.dispatch == nil || l.userID == "" {
		return
	}
	m, userID := l.mirror, l.userID
	l.dispatch.Go(name, func(ctx context.Context) error {
		return write(ctx, m, userID)
	})
}

func (l *Ledger) mirrorAddLocked(coll string, doc any) {
	l.mirrorLocked("add "+coll, func(ctx context.Context, m Mirror, userID string) error {
		_, err := m.Add(ctx, userID, coll, doc)
		return err
	})
}

func (l *Ledger) mirrorUpdateLocked(coll, id string, patch any) {
	l.mirrorLocked("update "+coll, func(ctx context.Context, m Mirror, userID string) error {
		return m.Update(ctx, userID, coll, id, patch)
	})
}

func (l *Ledger) mirrorDeleteLocked(coll, id string) {
	l.mirrorLocked("delete "+coll, func(ctx context.Context, m Mirror, userID string) error {
		return m.Delete(ctx, userID, coll, id)
	})
}

func (l *Ledger) mirrorSettingsLocked() {
	settings := l.st.Settings
	l.mirrorLocked("merge settings", func(ctx context.Context, m Mirror, userID string) error {
		return m.SetMerge(ctx, userID, DocSettings, settings)
	})
}

// mirrorFinancialLocked debounces the summary write; the last value wins.
func (l *Ledger) mirrorFinancialLocked() {
	if l.mirror == nil || l.dispatch == nil || l.userID == "" {
		return
	}
	m, userID, fd := l.mirror, l.userID, l.st.FinancialData
	l.dispatch.Debounce(DocFinancialData+":"+userID, l.debounce, func(ctx context.Context) error {
		return m.SetMerge(ctx, userID, DocFinancialData, fd)
	})
}
