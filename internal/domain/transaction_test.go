package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestTransactionType(t *testing.T) {
	from := uuid.New()
	to := uuid.New()

	tests := []struct {
		name string
		tx   Transaction
		want string
	}{
		{
			name: "both endpoints is a transfer",
			tx:   Transaction{FromAccountID: &from, ToAccountID: &to},
			want: "transfer",
		},
		{
			name: "destination only is a deposit",
			tx:   Transaction{ToAccountID: &to},
			want: "deposit",
		},
		{
			name: "source only is a withdrawal",
			tx:   Transaction{FromAccountID: &from},
			want: "withdrawal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tx.Type(); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
