package mongo

import (
	"context"
	"testing"
	"time"
)

func TestWithTimeout_SetsDeadline(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatal("expected a deadline")
	}
	if remaining := time.Until(deadline); remaining <= 0 || remaining > time.Minute {
		t.Fatalf("unexpected remaining time %v", remaining)
	}
}

func TestWithTimeout_KeepsEarlierParentDeadline(t *testing.T) {
	parent, cancelParent := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancelParent()
	parentDeadline, _ := parent.Deadline()

	ctx, cancel := WithTimeout(parent, time.Hour)
	defer cancel()

	deadline, _ := ctx.Deadline()
	if !deadline.Equal(parentDeadline) {
		t.Fatalf("deadline = %v, want parent deadline %v", deadline, parentDeadline)
	}
}

func TestTransactionOptions_MaxCommitTimeFollowsDeadline(t *testing.T) {
	if opts := transactionOptions(context.Background()); opts.MaxCommitTime != nil {
		t.Fatalf("no deadline should leave max commit time unset, got %v", *opts.MaxCommitTime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	opts := transactionOptions(ctx)
	if opts.MaxCommitTime == nil {
		t.Fatal("expected max commit time")
	}
	if *opts.MaxCommitTime <= 0 || *opts.MaxCommitTime > time.Second {
		t.Fatalf("unexpected max commit time %v", *opts.MaxCommitTime)
	}
}
