package mocks

import (
	"context"
	"database/sql"

	"github.com/stretchr/testify/mock"
)

// MockDBTX dipakai service test sebagai handle transaksi opaque:
// service hanya meneruskannya ke repository (yang juga di-mock)
// lalu memanggil Commit/Rollback.
type MockDBTX struct {
	mock.Mock
}

func (m *MockDBTX) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	callArgs := make([]interface{}, 0, 2+len(args))
	callArgs = append(callArgs, ctx, query)
	callArgs = append(callArgs, args...)

	ret := m.Called(callArgs...)

	var r0 sql.Result
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(sql.Result)
	}
	return r0, ret.Error(1)
}

func (m *MockDBTX) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	args := m.Called(ctx, query)
	var r0 *sql.Stmt
	if args.Get(0) != nil {
		r0 = args.Get(0).(*sql.Stmt)
	}
	return r0, args.Error(1)
}

func (m *MockDBTX) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	callArgs := make([]interface{}, 0, 2+len(args))
	callArgs = append(callArgs, ctx, query)
	callArgs = append(callArgs, args...)

	ret := m.Called(callArgs...)

	var r0 *sql.Rows
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*sql.Rows)
	}
	return r0, ret.Error(1)
}

func (m *MockDBTX) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	callArgs := make([]interface{}, 0, 2+len(args))
	callArgs = append(callArgs, ctx, query)
	callArgs = append(callArgs, args...)

	ret := m.Called(callArgs...)

	var r0 *sql.Row
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*sql.Row)
	}
	return r0
}

func (m *MockDBTX) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockDBTX) Rollback() error {
	args := m.Called()
	return args.Error(0)
}
