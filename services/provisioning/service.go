package provisioning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sunbridge-backend/lib/platforms/highlevel"
	"sunbridge-backend/lib/platforms/n8n"
	"sunbridge-backend/lib/platforms/supabase"

	"github.com/antzucaro/matchr"
	"github.com/mazen160/go-random"
)

const (
	// DefaultAgentId tags every provisioned sub-account row so the
	// workflow engine knows which agent owns it.
	DefaultAgentId = "SOL"

	subaccountsTable = "ghl_subaccounts"

	// nameSimilarityThreshold is how close two user names have to be
	// before a provision request is treated as a duplicate.
	nameSimilarityThreshold = 0.93
)

var (
	ErrAlreadyProvisioned = errors.New("a sub-account already exists for this firm user")
	ErrDuplicateUser      = errors.New("a user with a matching name or email already exists")
)

// Service provisions a CRM sub-account for a law firm: the location,
// its admin user, the workflow-engine registration, and the invitation
// email, in that order.
type Service struct {
	crm    *highlevel.Client
	supa   *supabase.Client
	flows  *n8n.Client
	mailer *InviteMailer
	opts   Options
}

type Options struct {
	// CompanyId is the CRM agency the sub-account is created under.
	CompanyId string
	// HomeLocationId, when set, is scanned for existing users before
	// provisioning so the same firm is not onboarded twice under a
	// different spelling.
	HomeLocationId string
	// AgentId defaults to DefaultAgentId.
	AgentId string
	// Mailer may be nil, in which case no invitation email is sent.
	Mailer *InviteMailer
}

func NewService(crm *highlevel.Client, supa *supabase.Client, flows *n8n.Client, opts Options) *Service {
	if opts.AgentId == "" {
		opts.AgentId = DefaultAgentId
	}
	return &Service{
		crm:    crm,
		supa:   supa,
		flows:  flows,
		mailer: opts.Mailer,
		opts:   opts,
	}
}

type ProvisionRequest struct {
	// FirmUserId is the firm's identity in the back-office database.
	FirmUserId string
	FirmName   string
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Website    string
	Address    string
	City       string
	State      string
	PostalCode string
}

// Result reports how far provisioning got. On a partial failure the
// ids created so far are still populated so the caller can retry or
// clean up.
type Result struct {
	LocationId   string
	UserId       string
	TempPassword string
	Registered   bool
	Invited      bool
}

// SubaccountRow is the registry row the back-office database keeps per
// provisioned sub-account.
type SubaccountRow struct {
	FirmUserId string `json:"firm_user_id"`
	AgentId    string `json:"agent_id"`
	LocationId string `json:"location_id"`
}

func (s *Service) checkDuplicates(ctx context.Context, req ProvisionRequest) error {
	var existing []SubaccountRow
	err := s.supa.From(subaccountsTable).
		Select("firm_user_id,agent_id,location_id").
		Eq("firm_user_id", req.FirmUserId).
		Execute(ctx, &existing)
	if err != nil {
		return fmt.Errorf("look up existing sub-accounts: %w", err)
	}
	if len(existing) > 0 {
		return fmt.Errorf("%w: location %s", ErrAlreadyProvisioned, existing[0].LocationId)
	}

	if s.opts.HomeLocationId == "" {
		return nil
	}
	users, err := s.crm.GetUsersByLocation(ctx, s.opts.HomeLocationId)
	if err != nil {
		return fmt.Errorf("list existing users: %w", err)
	}

	fullName := strings.ToLower(strings.TrimSpace(req.FirstName + " " + req.LastName))
	for _, user := range users {
		if strings.EqualFold(user.Email, req.Email) {
			return fmt.Errorf("%w: user %s", ErrDuplicateUser, user.Id)
		}
		similarity := matchr.JaroWinkler(fullName, strings.ToLower(user.Name), false)
		if similarity > nameSimilarityThreshold {
			return fmt.Errorf("%w: user %s (similarity %.2f)", ErrDuplicateUser, user.Id, similarity)
		}
	}
	return nil
}

// Provision runs the onboarding chain. A failure before the location
// exists aborts cleanly; failures after that return the partially
// filled Result alongside the error.
func (s *Service) Provision(ctx context.Context, req ProvisionRequest) (Result, error) {
	err := s.checkDuplicates(ctx, req)
	if err != nil {
		return Result{}, err
	}

	location, err := s.crm.CreateLocation(ctx, highlevel.LocationRequest{
		Name:       req.FirmName,
		CompanyId:  s.opts.CompanyId,
		Phone:      req.Phone,
		Address:    req.Address,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
		Website:    req.Website,
		ProspectInfo: highlevel.ProspectInfo{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("create location: %w", err)
	}
	result := Result{LocationId: location.Id}
	slog.InfoContext(ctx, "created sub-account",
		"firm", req.FirmName, "location_id", location.Id)

	password, err := tempPassword()
	if err != nil {
		return result, fmt.Errorf("generate temp password: %w", err)
	}
	user, err := s.crm.CreateUser(ctx, highlevel.CreateUserRequest{
		CompanyId:   s.opts.CompanyId,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Password:    password,
		PhoneNumber: req.Phone,
		LocationIds: []string{location.Id},
		Permissions: highlevel.AllUserPermissions(),
	})
	if err != nil {
		return result, fmt.Errorf("create admin user for location %s: %w", location.Id, err)
	}
	result.UserId = user.Id
	result.TempPassword = password

	err = s.supa.From(subaccountsTable).
		Upsert([]SubaccountRow{{
			FirmUserId: req.FirmUserId,
			AgentId:    s.opts.AgentId,
			LocationId: location.Id,
		}}).
		Execute(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("register sub-account %s: %w", location.Id, err)
	}

	_, err = s.flows.Send(ctx, n8n.Event{
		Agent:     s.opts.AgentId,
		Message:   fmt.Sprintf("provisioned sub-account for %s", req.FirmName),
		SessionId: req.FirmUserId,
		Extra: map[string]any{
			"locationId": location.Id,
			"userId":     user.Id,
			"firmName":   req.FirmName,
		},
	})
	if err != nil {
		return result, fmt.Errorf("notify workflow engine for %s: %w", location.Id, err)
	}
	result.Registered = true

	if s.mailer != nil {
		err = s.mailer.SendInvite(req.Email, req.FirstName, req.FirmName, password)
		if err != nil {
			return result, fmt.Errorf("send invitation to %s: %w", req.Email, err)
		}
		result.Invited = true
	}

	return result, nil
}

// tempPassword builds a throwaway first-login password that satisfies
// the CRM's complexity rules.
func tempPassword() (string, error) {
	code, err := random.String(10)
	if err != nil {
		return "", err
	}
	return "Sb1!" + code, nil
}
