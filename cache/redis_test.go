package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
)

var errConn = errors.New("connection refused")

func TestRedisCacheGet(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCacheFromClient(db, 3600, "")

	mock.ExpectGet(DefaultKeyPrefix + "key1").SetVal("Hola")

	got, ok := c.Get("key1")
	if !ok {
		t.Fatal("expected a hit")
	}
	if got != "Hola" {
		t.Errorf("value = %q, want Hola", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRedisCacheMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCacheFromClient(db, 3600, "")

	mock.ExpectGet(DefaultKeyPrefix + "missing").RedisNil()

	if _, ok := c.Get("missing"); ok {
		t.Error("expected a miss")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRedisCacheSet(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCacheFromClient(db, 3600, "")

	mock.ExpectSet(DefaultKeyPrefix+"key1", "Hola", time.Hour).SetVal("OK")

	if err := c.Set("key1", "Hola"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRedisCacheCustomPrefix(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCacheFromClient(db, 0, "custom:")

	mock.ExpectSet("custom:key1", "v", time.Duration(0)).SetVal("OK")
	mock.ExpectGet("custom:key1").SetVal("v")

	if err := c.Set("key1", "v"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := c.Get("key1"); !ok {
		t.Error("expected a hit")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRedisCacheErrorDegradesToMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCacheFromClient(db, 0, "")

	mock.ExpectGet(DefaultKeyPrefix + "key1").SetErr(errConn)

	if _, ok := c.Get("key1"); ok {
		t.Error("a backend error should read as a miss")
	}
}
