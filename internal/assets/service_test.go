package assets

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zecadelgado/patp/internal/depreciation"
	"github.com/zecadelgado/patp/internal/movements"
	"github.com/zecadelgado/patp/internal/schema"
)

type memoryAssetRepo struct {
	assets       map[int64]Asset
	nextID       int64
	insertErr    error
	valueWrites  int
	statusWrites int
}

func newMemoryAssetRepo() *memoryAssetRepo {
	return &memoryAssetRepo{assets: map[int64]Asset{}}
}

func (r *memoryAssetRepo) List(_ context.Context, filters Filters, _ schema.Capabilities) ([]Asset, error) {
	var out []Asset
	for _, a := range r.assets {
		if filters.Status != "" && a.Status != filters.Status {
			continue
		}
		if filters.CategoryID > 0 && a.CategoryID != filters.CategoryID {
			continue
		}
		if filters.SectorID > 0 && a.SectorID != filters.SectorID {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *memoryAssetRepo) Get(_ context.Context, id int64, _ schema.Capabilities) (Asset, error) {
	a, ok := r.assets[id]
	if !ok {
		return Asset{}, ErrNotFound
	}
	return a, nil
}

func (r *memoryAssetRepo) Insert(_ context.Context, a Asset, _ schema.Capabilities) (Asset, error) {
	if r.insertErr != nil {
		return Asset{}, r.insertErr
	}
	for _, existing := range r.assets {
		if existing.SerialNumber == a.SerialNumber {
			return Asset{}, ErrDuplicateSerial
		}
	}
	r.nextID++
	a.ID = r.nextID
	r.assets[a.ID] = a
	return a, nil
}

func (r *memoryAssetRepo) Update(_ context.Context, id int64, a Asset, _ schema.Capabilities) error {
	if _, ok := r.assets[id]; !ok {
		return ErrNotFound
	}
	a.ID = id
	r.assets[id] = a
	return nil
}

func (r *memoryAssetRepo) UpdateCurrentValue(_ context.Context, id int64, value float64) error {
	a, ok := r.assets[id]
	if !ok {
		return ErrNotFound
	}
	r.valueWrites++
	a.CurrentValue = &value
	r.assets[id] = a
	return nil
}

func (r *memoryAssetRepo) UpdateSector(_ context.Context, id int64, sectorID int64) error {
	a, ok := r.assets[id]
	if !ok {
		return ErrNotFound
	}
	a.SectorID = sectorID
	r.assets[id] = a
	return nil
}

func (r *memoryAssetRepo) UpdateStatus(_ context.Context, id int64, status string, retiredAt *time.Time) error {
	a, ok := r.assets[id]
	if !ok {
		return ErrNotFound
	}
	r.statusWrites++
	a.Status = status
	a.RetiredAt = retiredAt
	r.assets[id] = a
	return nil
}

type fakeMovementLog struct {
	entries []movements.Entry
	fail    bool
	nextID  int64
}

func (l *fakeMovementLog) Append(_ context.Context, entry movements.Entry) (movements.Movement, error) {
	if l.fail {
		return movements.Movement{}, movements.ErrAppendFailed
	}
	l.nextID++
	l.entries = append(l.entries, entry)
	return movements.Movement{
		ID:      l.nextID,
		AssetID: entry.AssetID,
		ActorID: entry.ActorID,
		Kind:    entry.Kind,
	}, nil
}

// kinds returns the appended movement kinds in order.
func (l *fakeMovementLog) kinds() []string {
	out := make([]string, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e.Kind)
	}
	return out
}

type staticCaps struct {
	caps schema.Capabilities
}

func (c staticCaps) Current() schema.Capabilities { return c.caps }

type fakeSectors map[int64]string

func (s fakeSectors) Name(_ context.Context, id int64) (string, error) {
	return s[id], nil
}

func newTestService(repo *memoryAssetRepo, log *fakeMovementLog, caps schema.Capabilities) *Service {
	return NewService(
		repo,
		log,
		staticCaps{caps: caps},
		fakeSectors{1: "Almoxarifado", 2: "TI"},
		depreciation.NewEngine(5),
		slog.New(slog.DiscardHandler),
	)
}

func validInput() Input {
	return Input{
		Name:          "Notebook Dell",
		Description:   "Latitude 5440",
		SerialNumber:  "SN-0001",
		PurchaseValue: 4500,
		AcquiredAt:    time.Now().AddDate(-1, 0, 0).Format("2006-01-02"),
		Condition:     ConditionGood,
		CategoryID:    1,
		SectorID:      1,
		Status:        StatusActive,
	}
}

func mustCreate(t *testing.T, svc *Service, in Input) Asset {
	t.Helper()
	result, err := svc.Create(context.Background(), 42, in)
	require.NoError(t, err)
	require.Empty(t, result.Warning)
	return result.Asset
}

func TestCreateRequiresFields(t *testing.T) {
	svc := newTestService(newMemoryAssetRepo(), &fakeMovementLog{}, schema.Capabilities{})

	in := validInput()
	in.Name = ""
	in.SerialNumber = " "
	in.SectorID = 0

	_, err := svc.Create(context.Background(), 42, in)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Contains(t, vErr.Fields, "name")
	require.Contains(t, vErr.Fields, "serial_number")
	require.Contains(t, vErr.Fields, "sector_id")
}

func TestCreateRejectsInvalidAcquisitionDate(t *testing.T) {
	svc := newTestService(newMemoryAssetRepo(), &fakeMovementLog{}, schema.Capabilities{})

	in := validInput()
	in.AcquiredAt = "yesterday"

	_, err := svc.Create(context.Background(), 42, in)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Contains(t, vErr.Fields, "acquired_at")
}

func TestCreateDuplicateSerial(t *testing.T) {
	repo := newMemoryAssetRepo()
	log := &fakeMovementLog{}
	svc := newTestService(repo, log, schema.Capabilities{})

	mustCreate(t, svc, validInput())

	_, err := svc.Create(context.Background(), 42, validInput())
	require.ErrorIs(t, err, ErrDuplicateSerial)
	require.Len(t, repo.assets, 1)
	require.Len(t, log.entries, 1)
}

func TestCreateEmitsInboundMovement(t *testing.T) {
	repo := newMemoryAssetRepo()
	log := &fakeMovementLog{}
	svc := newTestService(repo, log, schema.Capabilities{})

	result, err := svc.Create(context.Background(), 42, validInput())
	require.NoError(t, err)
	require.NotNil(t, result.Movement)

	require.Len(t, log.entries, 1)
	entry := log.entries[0]
	require.Equal(t, movements.KindInbound, entry.Kind)
	require.Equal(t, result.Asset.ID, entry.AssetID)
	require.Equal(t, int64(42), entry.ActorID)
	require.Equal(t, "Almoxarifado", entry.Destination)
}

func TestCreateAuditFailureKeepsAsset(t *testing.T) {
	repo := newMemoryAssetRepo()
	svc := newTestService(repo, &fakeMovementLog{fail: true}, schema.Capabilities{})

	result, err := svc.Create(context.Background(), 42, validInput())
	require.NoError(t, err)
	require.NotEmpty(t, result.Warning)
	require.Nil(t, result.Movement)
	require.Len(t, repo.assets, 1)
}

func TestCreateInitialisesCurrentValueWhenCapable(t *testing.T) {
	repo := newMemoryAssetRepo()
	svc := newTestService(repo, &fakeMovementLog{}, schema.Capabilities{CurrentValue: true})

	a := mustCreate(t, svc, validInput())
	require.NotNil(t, a.CurrentValue)
	// One year into a five year life leaves about 80 percent.
	require.InDelta(t, 3600, *a.CurrentValue, 10)
}

func TestCreateSkipsCurrentValueWithoutCapability(t *testing.T) {
	repo := newMemoryAssetRepo()
	svc := newTestService(repo, &fakeMovementLog{}, schema.Capabilities{})

	a := mustCreate(t, svc, validInput())
	require.Nil(t, a.CurrentValue)
}

func TestListComputesValuesWithoutCapability(t *testing.T) {
	repo := newMemoryAssetRepo()
	svc := newTestService(repo, &fakeMovementLog{}, schema.Capabilities{})

	created := mustCreate(t, svc, validInput())

	items, err := svc.List(context.Background(), Filters{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].ComputedValue)

	engine := depreciation.NewEngine(5)
	want := engine.CurrentValue(created.PurchaseValue, created.AcquiredAt, time.Now())
	require.InDelta(t, want, *items[0].ComputedValue, 0.5)

	// Display only, nothing persisted.
	require.Zero(t, repo.valueWrites)
}

func TestListPersistsValuesWithCapability(t *testing.T) {
	repo := newMemoryAssetRepo()
	svc := newTestService(repo, &fakeMovementLog{}, schema.Capabilities{CurrentValue: true})

	mustCreate(t, svc, validInput())

	items, err := svc.List(context.Background(), Filters{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].CurrentValue)
	require.Equal(t, 1, repo.valueWrites)
}

func TestListFlagsBrokenAcquisitionDate(t *testing.T) {
	repo := newMemoryAssetRepo()
	repo.nextID = 1
	repo.assets[1] = Asset{
		ID: 1, Name: "Mesa", SerialNumber: "SN-X",
		PurchaseValue: 300, Status: StatusActive,
		CategoryID: 1, SectorID: 1,
	}
	svc := newTestService(repo, &fakeMovementLog{}, schema.Capabilities{})

	items, err := svc.List(context.Background(), Filters{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.True(t, items[0].ValuationStale)
	require.Nil(t, items[0].ComputedValue)
}

func TestWriteOffTransitionsAndAppendsOneMovement(t *testing.T) {
	repo := newMemoryAssetRepo()
	log := &fakeMovementLog{}
	svc := newTestService(repo, log, schema.Capabilities{})

	created := mustCreate(t, svc, validInput())

	result, err := svc.WriteOff(context.Background(), created.ID, 42)
	require.NoError(t, err)
	require.Empty(t, result.Warning)
	require.Equal(t, StatusWrittenOff, result.Asset.Status)
	require.NotNil(t, result.Asset.RetiredAt)
	require.NotNil(t, result.Movement)

	require.Equal(t, []string{movements.KindInbound, movements.KindWriteOff}, log.kinds())
	entry := log.entries[1]
	require.Equal(t, created.ID, entry.AssetID)
	require.Equal(t, int64(42), entry.ActorID)
	require.Equal(t, "Almoxarifado", entry.Origin)
	require.Equal(t, "written off", entry.Destination)
}

func TestWriteOffTwiceRejected(t *testing.T) {
	repo := newMemoryAssetRepo()
	log := &fakeMovementLog{}
	svc := newTestService(repo, log, schema.Capabilities{})

	created := mustCreate(t, svc, validInput())

	_, err := svc.WriteOff(context.Background(), created.ID, 42)
	require.NoError(t, err)

	_, err = svc.WriteOff(context.Background(), created.ID, 42)
	require.ErrorIs(t, err, ErrAlreadyWrittenOff)
	require.Equal(t, []string{movements.KindInbound, movements.KindWriteOff}, log.kinds())
}

func TestWriteOffAuditFailureKeepsStatus(t *testing.T) {
	repo := newMemoryAssetRepo()
	log := &fakeMovementLog{}
	svc := newTestService(repo, log, schema.Capabilities{})

	created := mustCreate(t, svc, validInput())
	log.fail = true

	result, err := svc.WriteOff(context.Background(), created.ID, 42)
	require.NoError(t, err)
	require.NotEmpty(t, result.Warning)
	require.Nil(t, result.Movement)
	require.Equal(t, StatusWrittenOff, result.Asset.Status)

	stored := repo.assets[created.ID]
	require.Equal(t, StatusWrittenOff, stored.Status)
	require.NotNil(t, stored.RetiredAt)
}

func TestWriteOffNotFound(t *testing.T) {
	svc := newTestService(newMemoryAssetRepo(), &fakeMovementLog{}, schema.Capabilities{})

	_, err := svc.WriteOff(context.Background(), 999, 42)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTransferMovesSectorAndRecordsMovement(t *testing.T) {
	repo := newMemoryAssetRepo()
	log := &fakeMovementLog{}
	svc := newTestService(repo, log, schema.Capabilities{})

	created := mustCreate(t, svc, validInput())

	result, err := svc.Transfer(context.Background(), created.ID, 42, 2, "realocado")
	require.NoError(t, err)
	require.Equal(t, int64(2), result.Asset.SectorID)

	require.Equal(t, []string{movements.KindInbound, movements.KindTransfer}, log.kinds())
	entry := log.entries[1]
	require.Equal(t, "Almoxarifado", entry.Origin)
	require.Equal(t, "TI", entry.Destination)
	require.Equal(t, "realocado", entry.Notes)
}

func TestSetStatusFollowsTransitionRules(t *testing.T) {
	repo := newMemoryAssetRepo()
	log := &fakeMovementLog{}
	svc := newTestService(repo, log, schema.Capabilities{})

	created := mustCreate(t, svc, validInput())

	result, err := svc.SetStatus(context.Background(), created.ID, 42, StatusUnderMaintenance, "")
	require.NoError(t, err)
	require.Equal(t, StatusUnderMaintenance, result.Asset.Status)
	require.Equal(t, movements.KindMaintenance, log.entries[1].Kind)

	// Maintenance can only go back to active.
	_, err = svc.SetStatus(context.Background(), created.ID, 42, StatusMissing, "")
	require.ErrorIs(t, err, ErrInvalidTransition)

	result, err = svc.SetStatus(context.Background(), created.ID, 42, StatusActive, "")
	require.NoError(t, err)
	require.Equal(t, StatusActive, result.Asset.Status)
	require.Equal(t, movements.KindInbound, log.entries[2].Kind)
}

func TestSetStatusSameStatusIsNoOp(t *testing.T) {
	repo := newMemoryAssetRepo()
	log := &fakeMovementLog{}
	svc := newTestService(repo, log, schema.Capabilities{})

	created := mustCreate(t, svc, validInput())

	result, err := svc.SetStatus(context.Background(), created.ID, 42, StatusActive, "")
	require.NoError(t, err)
	require.Equal(t, StatusActive, result.Asset.Status)
	require.Len(t, log.entries, 1)
}

func TestSetStatusCannotWriteOff(t *testing.T) {
	svc := newTestService(newMemoryAssetRepo(), &fakeMovementLog{}, schema.Capabilities{})

	_, err := svc.SetStatus(context.Background(), 1, 42, StatusWrittenOff, "")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestUpdateCannotChangeStatus(t *testing.T) {
	repo := newMemoryAssetRepo()
	log := &fakeMovementLog{}
	svc := newTestService(repo, log, schema.Capabilities{})

	created := mustCreate(t, svc, validInput())

	in := validInput()
	in.Status = StatusMissing
	_, err := svc.Update(context.Background(), created.ID, in)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Contains(t, vErr.Fields, "status")
	require.Equal(t, StatusActive, repo.assets[created.ID].Status)
	require.Len(t, log.entries, 1)

	// Forbidden edges stay forbidden regardless of the starting status.
	_, err = svc.SetStatus(context.Background(), created.ID, 42, StatusUnderMaintenance, "")
	require.NoError(t, err)
	_, err = svc.Update(context.Background(), created.ID, in)
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, StatusUnderMaintenance, repo.assets[created.ID].Status)
}

func TestUpdateKeepsAttributesEditable(t *testing.T) {
	repo := newMemoryAssetRepo()
	svc := newTestService(repo, &fakeMovementLog{}, schema.Capabilities{})

	created := mustCreate(t, svc, validInput())

	in := validInput()
	in.Name = "Notebook Dell (recondicionado)"
	in.Condition = ConditionFair
	updated, err := svc.Update(context.Background(), created.ID, in)
	require.NoError(t, err)
	require.Equal(t, "Notebook Dell (recondicionado)", updated.Name)
	require.Equal(t, ConditionFair, updated.Condition)
	require.Equal(t, StatusActive, updated.Status)
}

func TestUpdateRejectsWrittenOffAsset(t *testing.T) {
	repo := newMemoryAssetRepo()
	svc := newTestService(repo, &fakeMovementLog{}, schema.Capabilities{})

	created := mustCreate(t, svc, validInput())
	_, err := svc.WriteOff(context.Background(), created.ID, 42)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), created.ID, validInput())
	require.ErrorIs(t, err, ErrAlreadyWrittenOff)
}

func TestUpdateNotFound(t *testing.T) {
	svc := newTestService(newMemoryAssetRepo(), &fakeMovementLog{}, schema.Capabilities{})

	_, err := svc.Update(context.Background(), 123, validInput())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRevalueAllWithoutCapabilityIsNoOp(t *testing.T) {
	repo := newMemoryAssetRepo()
	svc := newTestService(repo, &fakeMovementLog{}, schema.Capabilities{})

	mustCreate(t, svc, validInput())

	count, err := svc.RevalueAll(context.Background())
	require.NoError(t, err)
	require.Zero(t, count)
	require.Zero(t, repo.valueWrites)
}

func TestRevalueAllUpdatesActiveAssets(t *testing.T) {
	repo := newMemoryAssetRepo()
	svc := newTestService(repo, &fakeMovementLog{}, schema.Capabilities{CurrentValue: true})

	first := mustCreate(t, svc, validInput())

	second := validInput()
	second.SerialNumber = "SN-0002"
	other := mustCreate(t, svc, second)
	_, err := svc.WriteOff(context.Background(), other.ID, 42)
	require.NoError(t, err)

	count, err := svc.RevalueAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, count)
	require.NotNil(t, repo.assets[first.ID].CurrentValue)
}
