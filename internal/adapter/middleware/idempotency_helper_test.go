package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"testing"
	"time"
)

func Test_bodyHash(t *testing.T) {
	data := []byte("hello world")
	got := bodyHash(data)

	sum := sha256.Sum256(data)
	want := hex.EncodeToString(sum[:])

	if got != want {
		t.Fatalf("bodyHash mismatch: got %s want %s", got, want)
	}
}

func Test_buildKey(t *testing.T) {
	k := buildKey("POST", "/marketplace/loans", strings.Repeat("i", 32), strings.Repeat("a", 32))
	wantPrefix := "idemp:ag:post:/marketplace/loans:"
	if !strings.HasPrefix(k, wantPrefix) {
		t.Fatalf("buildKey prefix mismatch: got %q want prefix %q", k, wantPrefix)
	}
	if !strings.Contains(k, ":"+strings.Repeat("i", 32)+":") || !strings.HasSuffix(k, strings.Repeat("a", 32)) {
		t.Fatalf("buildKey missing caller/request segments: %q", k)
	}
}

func Test_validReqID(t *testing.T) {
	valid := []string{
		"3f9a6a1b-3d54-4fbe-8b3a-6b3e8d6b2c88",
		strings.Repeat("a", 32),
		"3f9a6a1b3d544fbe8b3a6b3e8d6b2c88",
	}
	for _, s := range valid {
		if !validReqID(s) {
			t.Fatalf("validReqID should accept %q", s)
		}
	}

	invalid := []string{"", "short", strings.Repeat("G", 32), "3f9a6a1b-3d54-4fbe"}
	for _, s := range invalid {
		if validReqID(s) {
			t.Fatalf("validReqID should reject %q", s)
		}
	}
}

func Test_parseRequestAt(t *testing.T) {
	// epoch seconds
	now := time.Now().UTC().Truncate(time.Second)
	got, err := parseRequestAt(strconv.FormatInt(now.Unix(), 10))
	if err != nil {
		t.Fatalf("epoch seconds: %v", err)
	}
	if !got.Equal(now) {
		t.Fatalf("epoch seconds: got %v want %v", got, now)
	}

	// epoch milliseconds
	ms := now.UnixMilli()
	got, err = parseRequestAt(strconv.FormatInt(ms, 10))
	if err != nil {
		t.Fatalf("epoch ms: %v", err)
	}
	if !got.Equal(time.UnixMilli(ms).UTC()) {
		t.Fatalf("epoch ms: got %v", got)
	}

	// RFC3339 with zone
	if _, err := parseRequestAt("2026-08-30T10:00:00+07:00"); err != nil {
		t.Fatalf("rfc3339 with zone: %v", err)
	}

	// naive local timestamp without zone is rejected
	if _, err := parseRequestAt("2026-08-30T10:00:00"); err == nil {
		t.Fatalf("naive timestamp accepted")
	}
	if _, err := parseRequestAt(""); err == nil {
		t.Fatalf("empty accepted")
	}
}

func Test_provisionalSetAndLoad(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	ctx := context.Background()

	entry := idempEntry{InProgress: true, RequestID: strings.Repeat("a", 32), CreatedAt: nowUTC()}
	ok, err := provisionalSet(ctx, rdb, "idemp:test", entry)
	if err != nil || !ok {
		t.Fatalf("provisionalSet: ok=%v err=%v", ok, err)
	}

	// second set must lose
	ok, err = provisionalSet(ctx, rdb, "idemp:test", entry)
	if err != nil || ok {
		t.Fatalf("second provisionalSet: ok=%v err=%v", ok, err)
	}

	got, err := loadEntry(ctx, rdb, "idemp:test")
	if err != nil {
		t.Fatalf("loadEntry: %v", err)
	}
	if !got.InProgress || got.RequestID != entry.RequestID {
		t.Fatalf("loaded = %+v", got)
	}
}

func Test_saveFinalOverwritesLock(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	ctx := context.Background()

	if ok, err := provisionalSet(ctx, rdb, "idemp:test", idempEntry{InProgress: true}); err != nil || !ok {
		t.Fatalf("provisionalSet: ok=%v err=%v", ok, err)
	}

	final := idempEntry{InProgress: false, Code: 201, Body: []byte(`{"ok":true}`)}
	if err := saveFinal(ctx, rdb, "idemp:test", final, 30*time.Second); err != nil {
		t.Fatalf("saveFinal: %v", err)
	}

	got, err := loadEntry(ctx, rdb, "idemp:test")
	if err != nil {
		t.Fatalf("loadEntry: %v", err)
	}
	if got.InProgress || got.Code != 201 {
		t.Fatalf("final = %+v", got)
	}
}
