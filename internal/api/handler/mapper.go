package handler

import (
	"github.com/staffhub/user-management/internal/core/domain"
	"github.com/staffhub/user-management/internal/core/ports"
)

const notProvided = "Not provided"

// --- Request → Service input ---

func toRegisterInput(req registerRequest, role string) ports.RegisterInput {
	return ports.RegisterInput{
		Name:     req.Name,
		LastName: req.LastName,
		Email:    req.Email,
		Password: req.Password,
		Bio:      req.Bio,
		Role:     role,
	}
}

func toProfilePatch(req updateProfileRequest) ports.ProfilePatch {
	return ports.ProfilePatch{
		Name:             req.Name,
		LastName:         req.LastName,
		Bio:              req.Bio,
		MobileNumber:     req.MobileNumber,
		PermanentAddress: req.PermanentAddress,
		CurrentPosition:  req.CurrentPosition,
		Experience:       req.Experience,
		Education:        req.Education,
	}
}

// --- Service result → HTTP response ---

func toSummary(a *domain.Account) userSummary {
	return userSummary{
		UserID:   a.ID,
		Name:     a.Name,
		Email:    a.Email,
		Role:     a.Role,
		IsActive: a.IsActive,
	}
}

func toListItem(a *domain.Account) userListItem {
	item := userListItem{
		ID:              a.ID,
		Name:            a.Name,
		LastName:        a.LastName,
		Email:           a.Email,
		Phone:           orNotProvided(a.MobileNumber),
		Address:         orNotProvided(a.PermanentAddress),
		JoinDate:        a.CreatedAt.UTC().Format("2006-01-02"),
		Status:          "Inactive",
		Role:            a.Role,
		CurrentPosition: a.CurrentPosition,
		Experience:      a.Experience,
		Education:       a.Education,
	}
	if a.IsActive {
		item.Status = "Active"
	}
	if a.ProfileImage != "" {
		img := a.ProfileImage
		item.ProfileImage = &img
	}
	if item.Experience == nil {
		item.Experience = []domain.Experience{}
	}
	if item.Education == nil {
		item.Education = []domain.Education{}
	}
	if a.Creator != nil {
		item.CreatedBy = &creatorView{Name: a.Creator.Name, Email: a.Creator.Email}
	}
	return item
}

func toListResponse(accounts []*domain.Account) userListResponse {
	items := make([]userListItem, 0, len(accounts))
	for _, a := range accounts {
		items = append(items, toListItem(a))
	}
	return userListResponse{
		Message: "Users retrieved successfully",
		Count:   len(items),
		Users:   items,
	}
}

func orNotProvided(s string) string {
	if s == "" {
		return notProvided
	}
	return s
}
