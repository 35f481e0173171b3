package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/saccotech/sacco-engine/internal/domain"
	"github.com/saccotech/sacco-engine/internal/repository/memory"
	customError "github.com/saccotech/sacco-engine/pkg/errors"
)

func TestMemberService_Create(t *testing.T) {
	ctx := context.Background()
	svc := NewMemberService(memory.NewStores().Members)

	member, err := svc.Create(ctx, &domain.CreateMemberRequest{
		MemberNumber: "M-1001",
		FirstName:    "Grace",
		LastName:     "Wanjiku",
		NationalID:   "12345678",
		Phone:        "254712345678",
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.MemberStatusActive, member.Status)
	assert.False(t, member.JoinDate.IsZero())
	assert.False(t, member.KYCVerified)
}

func TestMemberService_Create_Duplicates(t *testing.T) {
	ctx := context.Background()
	svc := NewMemberService(memory.NewStores().Members)

	_, err := svc.Create(ctx, &domain.CreateMemberRequest{
		MemberNumber: "M-1001",
		FirstName:    "Grace",
		LastName:     "Wanjiku",
		NationalID:   "12345678",
		Phone:        "254712345678",
	})
	assert.NoError(t, err)

	tests := []struct {
		name string
		req  *domain.CreateMemberRequest
	}{
		{
			name: "duplicate member number",
			req: &domain.CreateMemberRequest{
				MemberNumber: "M-1001",
				FirstName:    "Peter",
				LastName:     "Otieno",
				NationalID:   "99999999",
				Phone:        "254700000000",
			},
		},
		{
			name: "duplicate national id",
			req: &domain.CreateMemberRequest{
				MemberNumber: "M-1002",
				FirstName:    "Peter",
				LastName:     "Otieno",
				NationalID:   "12345678",
				Phone:        "254700000000",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.req)
			assert.Error(t, err)
			assert.ErrorIs(t, err, customError.ErrDuplicateMember)
		})
	}
}

func TestMemberService_Update(t *testing.T) {
	ctx := context.Background()
	svc := NewMemberService(memory.NewStores().Members)

	member, err := svc.Create(ctx, &domain.CreateMemberRequest{
		MemberNumber: "M-1001",
		FirstName:    "Grace",
		LastName:     "Wanjiku",
		NationalID:   "12345678",
		Phone:        "254712345678",
	})
	assert.NoError(t, err)

	newPhone := "254799999999"
	verified := true
	suspended := domain.MemberStatusSuspended

	updated, err := svc.Update(ctx, member.ID, &domain.UpdateMemberRequest{
		Phone:       &newPhone,
		KYCVerified: &verified,
		Status:      &suspended,
	})

	assert.NoError(t, err)
	assert.Equal(t, newPhone, updated.Phone)
	assert.True(t, updated.KYCVerified)
	assert.Equal(t, domain.MemberStatusSuspended, updated.Status)
	// Untouched fields survive a partial update.
	assert.Equal(t, "Grace", updated.FirstName)
}

func TestMemberService_Get_NotFound(t *testing.T) {
	ctx := context.Background()
	svc := NewMemberService(memory.NewStores().Members)

	_, err := svc.Get(ctx, uuid.New())
	assert.Error(t, err)
	assert.ErrorIs(t, err, customError.ErrMemberNotFound)
}
