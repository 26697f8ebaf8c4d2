package grouppolicy

import (
	"testing"

	"github.com/dalemusser/sharediary/internal/app/system/apperr"
	"github.com/dalemusser/sharediary/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func fixture() (g models.Group, leader, member, invitee, stranger primitive.ObjectID) {
	leader = primitive.NewObjectID()
	member = primitive.NewObjectID()
	invitee = primitive.NewObjectID()
	stranger = primitive.NewObjectID()
	g = models.Group{
		ID:          primitive.NewObjectID(),
		Name:        "Book club",
		Leader:      leader,
		Members:     []primitive.ObjectID{leader, member},
		Invitations: []primitive.ObjectID{invitee},
	}
	return
}

func TestPredicates(t *testing.T) {
	g, leader, member, invitee, stranger := fixture()

	if !IsLeader(g, leader) || IsLeader(g, member) {
		t.Error("IsLeader mismatch")
	}
	if !IsMember(g, leader) || !IsMember(g, member) || IsMember(g, invitee) || IsMember(g, stranger) {
		t.Error("IsMember mismatch")
	}
	if !IsInvited(g, invitee) || IsInvited(g, member) {
		t.Error("IsInvited mismatch")
	}
	if !IsSelf(member, member) || IsSelf(member, leader) {
		t.Error("IsSelf mismatch")
	}
}

func TestCanRemoveMember(t *testing.T) {
	g, leader, member, _, stranger := fixture()

	tests := []struct {
		name   string
		actor  primitive.ObjectID
		target primitive.ObjectID
		want   apperr.Kind
		ok     bool
	}{
		{"leader removes member", leader, member, 0, true},
		{"leader removes self", leader, leader, apperr.InvalidArgument, false},
		{"member removes leader", member, leader, apperr.Forbidden, false},
		{"member removes self", member, member, apperr.Forbidden, false},
		{"stranger removes member", stranger, member, apperr.Forbidden, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanRemoveMember(g, tt.actor, tt.target)
			if tt.ok {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !apperr.Is(err, tt.want) {
				t.Errorf("got %v, want kind %v", err, tt.want)
			}
		})
	}
}

func TestLeaderOnlyOperations(t *testing.T) {
	g, leader, member, _, _ := fixture()

	if err := CanUpdatePassword(g, leader); err != nil {
		t.Errorf("leader UpdatePassword: %v", err)
	}
	if err := CanUpdatePassword(g, member); !apperr.Is(err, apperr.Forbidden) {
		t.Errorf("member UpdatePassword: got %v, want Forbidden", err)
	}
	if err := CanDeleteGroup(g, leader); err != nil {
		t.Errorf("leader DeleteGroup: %v", err)
	}
	if err := CanDeleteGroup(g, member); !apperr.Is(err, apperr.Forbidden) {
		t.Errorf("member DeleteGroup: got %v, want Forbidden", err)
	}
}

func TestCanInvite(t *testing.T) {
	g, leader, member, invitee, stranger := fixture()

	for _, actor := range []primitive.ObjectID{leader, member, invitee, stranger} {
		if err := CanInvite(g, actor, InviteOpen); err != nil {
			t.Errorf("open policy refused %v: %v", actor, err)
		}
	}

	if err := CanInvite(g, leader, InviteMembers); err != nil {
		t.Errorf("members policy refused leader: %v", err)
	}
	if err := CanInvite(g, member, InviteMembers); err != nil {
		t.Errorf("members policy refused member: %v", err)
	}
	if err := CanInvite(g, invitee, InviteMembers); !apperr.Is(err, apperr.Forbidden) {
		t.Errorf("members policy let invitee invite: %v", err)
	}
	if err := CanInvite(g, stranger, InviteMembers); !apperr.Is(err, apperr.Forbidden) {
		t.Errorf("members policy let stranger invite: %v", err)
	}
}

func TestCanLeave(t *testing.T) {
	g, leader, member, invitee, _ := fixture()

	if err := CanLeave(g, member); err != nil {
		t.Errorf("member leave: %v", err)
	}
	if err := CanLeave(g, leader); !apperr.Is(err, apperr.Forbidden) {
		t.Errorf("leader leave: got %v, want Forbidden", err)
	}
	if err := CanLeave(g, invitee); !apperr.Is(err, apperr.Forbidden) {
		t.Errorf("invitee leave: got %v, want Forbidden", err)
	}
}

func TestParseInvitePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    InvitePolicy
		wantErr bool
	}{
		{"", InviteOpen, false},
		{"open", InviteOpen, false},
		{"  Members ", InviteMembers, false},
		{"leader", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseInvitePolicy(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
