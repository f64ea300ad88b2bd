package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"compliance-engine/core/compliance"
	"compliance-engine/core/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var (
	refA = compliance.ObjectRef{Kind: "device", ID: "A"}
	refB = compliance.ObjectRef{Kind: "device", ID: "B"}
)

// setupSQLite opens an in-memory ledger.
func setupSQLite(t *testing.T) *Store {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return NewStore(db, zap.NewNop())
}

// setupMockDB creates a mock MySQL GORM DB.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := gormmysql.New(gormmysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func reconcile(t *testing.T, s *Store, ref compliance.ObjectRef, ruleID string, outcome compliance.Outcome, now time.Time) compliance.Plan {
	t.Helper()
	target := compliance.TargetState(ref, outcome)
	plan, err := s.ReconcilePair(context.Background(), ref, ruleID, func(existing []compliance.Record) compliance.Plan {
		return compliance.Diff(ref, ruleID, existing, target, now)
	})
	require.NoError(t, err)
	return plan
}

func TestStore_ReconcilePair(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	plan := reconcile(t, s, refA, "R", compliance.Failed(map[string]string{"foo": "bad foo"}), t0)
	assert.Equal(t, 2, plan.Count(compliance.WriteCreate))

	records, err := s.List(ctx, compliance.Filter{RuleID: "R"})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, compliance.AttributeAll, records[0].Attribute)
	assert.False(t, records[0].Valid)
	assert.Equal(t, "foo", records[1].Attribute)
	assert.Equal(t, "bad foo", records[1].Message)

	t.Run("identical outcome writes nothing", func(t *testing.T) {
		plan := reconcile(t, s, refA, "R", compliance.Failed(map[string]string{"foo": "bad foo"}), t0.Add(time.Hour))
		assert.True(t, plan.Empty())

		records, err := s.List(ctx, compliance.Filter{RuleID: "R"})
		require.NoError(t, err)
		for _, r := range records {
			assert.True(t, r.LastUpdated.Equal(t0), "last_updated moved for %s", r.Attribute)
		}
	})

	t.Run("clean outcome flips rows in place", func(t *testing.T) {
		plan := reconcile(t, s, refA, "R", compliance.Clean(), t0.Add(2*time.Hour))
		assert.Equal(t, 2, plan.Count(compliance.WriteUpdate))

		records, err := s.List(ctx, compliance.Filter{RuleID: "R"})
		require.NoError(t, err)
		require.Len(t, records, 2)
		for _, r := range records {
			assert.True(t, r.Valid)
		}
		assert.Equal(t, "foo is valid.", records[1].Message)
	})
}

func TestStore_List(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()
	now := time.Now().UTC()

	reconcile(t, s, refA, "R1", compliance.Failed(map[string]string{"foo": "bad"}), now)
	reconcile(t, s, refA, "R2", compliance.Clean(), now)
	reconcile(t, s, refB, "R1", compliance.Clean(), now)
	reconcile(t, s, compliance.ObjectRef{Kind: "site", ID: "A"}, "R3", compliance.Clean(), now)

	invalid := false
	tests := []struct {
		name   string
		filter compliance.Filter
		want   int
	}{
		{"all", compliance.Filter{}, 5},
		{"invalid", compliance.Filter{Valid: &invalid}, 2},
		{"by rule", compliance.Filter{RuleID: "R1"}, 3},
		{"by kind", compliance.Filter{Kind: "site"}, 1},
		{"by object", compliance.Filter{Kind: "device", ObjectID: "A"}, 3},
		{"by attribute", compliance.Filter{Attribute: "foo"}, 1},
		{"limit", compliance.Filter{Limit: 2}, 2},
		{"offset", compliance.Filter{Limit: 10, Offset: 4}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := s.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Len(t, records, tt.want)
		})
	}
}

func TestStore_ObjectRefsAndDelete(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()
	now := time.Now().UTC()

	reconcile(t, s, refA, "R1", compliance.Failed(map[string]string{"foo": "bad"}), now)
	reconcile(t, s, refA, "R2", compliance.Clean(), now)
	reconcile(t, s, refB, "R1", compliance.Clean(), now)

	refs, err := s.ObjectRefs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []compliance.ObjectRef{refA, refB}, refs)

	n, err := s.DeleteObject(ctx, refA)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	refs, err = s.ObjectRefs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []compliance.ObjectRef{refB}, refs)

	n, err = s.DeleteObject(ctx, refA)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStore_ConcurrentEngineWrites(t *testing.T) {
	s := setupSQLite(t)
	engine := compliance.NewEngine(compliance.NewExecutor(nil, nil, 0), s, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcome := compliance.Failed(map[string]string{"foo": fmt.Sprintf("bad foo %d", i%2)})
			_, err := engine.Reconcile(context.Background(), refA, "R", outcome)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	records, err := s.List(context.Background(), compliance.Filter{})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestStore_MySQLLocksPairAndRetries(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewStore(db, zap.NewNop())
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `compliance_records` WHERE .* FOR UPDATE").
		WillReturnError(&mysql.MySQLError{Number: 1213, Message: "Deadlock found"})
	mock.ExpectRollback()

	rows := sqlmock.NewRows([]string{"id", "object_kind", "object_id", "rule_id", "attribute", "valid", "message", "last_updated"}).
		AddRow(7, "device", "A", "R", compliance.AttributeAll, false, "old", now)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `compliance_records` WHERE .* FOR UPDATE").WillReturnRows(rows)
	mock.ExpectExec("UPDATE `compliance_records` SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	target := compliance.TargetState(refA, compliance.Clean())
	plan, err := s.ReconcilePair(context.Background(), refA, "R", func(existing []compliance.Record) compliance.Plan {
		return compliance.Diff(refA, "R", existing, target, now)
	})
	require.NoError(t, err)
	assert.Equal(t, 1, plan.Count(compliance.WriteUpdate))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_MySQLPermanentError(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewStore(db, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT").WillReturnError(&mysql.MySQLError{Number: 1146, Message: "Table doesn't exist"})
	mock.ExpectRollback()

	_, err := s.ReconcilePair(context.Background(), refA, "R", func([]compliance.Record) compliance.Plan {
		return compliance.Plan{}
	})
	var myErr *mysql.MySQLError
	require.ErrorAs(t, err, &myErr)
	assert.Equal(t, uint16(1146), myErr.Number)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"duplicated key", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), true},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062}, true},
		{"mysql lock wait", &mysql.MySQLError{Number: 1205}, true},
		{"mysql deadlock", fmt.Errorf("load: %w", &mysql.MySQLError{Number: 1213}), true},
		{"mysql access denied", &mysql.MySQLError{Number: 1045}, false},
		{"sqlite busy", errors.New("database is locked"), true},
		{"sqlite unique", errors.New("UNIQUE constraint failed: compliance_records.attribute"), true},
		{"other", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isTransient(tt.err))
		})
	}
}
