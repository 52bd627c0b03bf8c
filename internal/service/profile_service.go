package service

import (
	"context"
	"errors"
	"strings"

	"zenith/internal/models"
	"zenith/internal/repository"
	"zenith/internal/storage"

	"gorm.io/gorm"
)

const maxBioLength = 500

// ProfileService reads and edits user profiles.
type ProfileService struct {
	users repository.UserRepository
	media *storage.MediaStore
}

// NewProfileService creates a new profile service.
func NewProfileService(users repository.UserRepository, media *storage.MediaStore) *ProfileService {
	return &ProfileService{users: users, media: media}
}

// ProfileView is a public profile page: the user, their profile, and whether
// the viewer may see the birth date.
type ProfileView struct {
	User          *models.User
	Profile       *models.Profile
	ShowBirthDate bool
}

// Get loads a profile page by username, lazily creating the profile row for
// accounts that predate profiles.
func (s *ProfileService) Get(ctx context.Context, username string, viewer *models.User) (*ProfileView, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Usuário", username)
		}
		return nil, models.NewInternalError(err)
	}

	profile, err := s.users.EnsureProfile(ctx, user.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	return &ProfileView{
		User:          user,
		Profile:       profile,
		ShowBirthDate: birthDateVisible(profile, user, viewer),
	}, nil
}

// birthDateVisible applies the profile's visibility setting. "friends" is
// reserved for a future relationship feature and currently behaves as
// owner-and-staff only.
func birthDateVisible(profile *models.Profile, owner *models.User, viewer *models.User) bool {
	switch profile.BirthDateVisibility {
	case models.VisibilityPublic:
		return true
	default:
		if viewer == nil {
			return false
		}
		return viewer.ID == owner.ID || viewer.IsStaff
	}
}

// ProfileUpdateInput carries the editable profile fields plus the user's
// display name.
type ProfileUpdateInput struct {
	FirstName           string
	LastName            string
	Role                string
	Bio                 string
	Twitter             string
	LinkedIn            string
	Website             string
	Location            string
	BirthDateVisibility string
}

// Update validates and saves the profile fields and the user's name. Twitter
// handles are normalized to a leading @.
func (s *ProfileService) Update(ctx context.Context, user *models.User, input ProfileUpdateInput) (*models.Profile, error) {
	profile, err := s.users.EnsureProfile(ctx, user.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	firstName := strings.TrimSpace(input.FirstName)
	if firstName == "" {
		return nil, models.NewFieldValidationError("first_name", "O nome é obrigatório")
	}
	lastName := strings.TrimSpace(input.LastName)

	bio := strings.TrimSpace(input.Bio)
	if len([]rune(bio)) > maxBioLength {
		return nil, models.NewFieldValidationError("bio", "A bio deve ter no máximo 500 caracteres")
	}

	website := strings.TrimSpace(input.Website)
	if website != "" && !strings.HasPrefix(website, "http://") && !strings.HasPrefix(website, "https://") {
		website = "https://" + website
	}

	twitter := strings.TrimSpace(input.Twitter)
	if twitter != "" && !strings.HasPrefix(twitter, "@") {
		twitter = "@" + twitter
	}

	visibility := input.BirthDateVisibility
	switch visibility {
	case models.VisibilityPublic, models.VisibilityFriends, models.VisibilityPrivate:
	case "":
		visibility = profile.BirthDateVisibility
	default:
		return nil, models.NewFieldValidationError("birth_date_visibility", "Visibilidade inválida")
	}

	if firstName != user.FirstName || lastName != user.LastName {
		if err := s.users.UpdateName(ctx, user.ID, firstName, lastName); err != nil {
			return nil, models.NewInternalError(err)
		}
		user.FirstName = firstName
		user.LastName = lastName
	}

	profile.Role = strings.TrimSpace(input.Role)
	profile.Bio = bio
	profile.Twitter = twitter
	profile.LinkedIn = strings.TrimSpace(input.LinkedIn)
	profile.Website = website
	profile.Location = strings.TrimSpace(input.Location)
	profile.BirthDateVisibility = visibility

	if err := s.users.UpdateProfile(ctx, profile); err != nil {
		return nil, models.NewInternalError(err)
	}
	return profile, nil
}

// UpdateAvatar normalizes the uploaded image, stores it and removes the
// previous file. The old file is only deleted after the new path is saved.
func (s *ProfileService) UpdateAvatar(ctx context.Context, userID uint, data []byte) (*models.Profile, error) {
	profile, err := s.users.EnsureProfile(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	normalized, err := storage.NormalizeAvatar(data)
	if err != nil {
		return nil, models.NewFieldValidationError("avatar", "Envie uma imagem válida (JPEG, PNG ou WebP)")
	}

	path, err := s.media.Save("avatars", ".webp", normalized)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	old := profile.AvatarPath
	profile.AvatarPath = path
	if err := s.users.UpdateProfile(ctx, profile); err != nil {
		// Do not leak the freshly written file on failure
		_ = s.media.Delete(path)
		return nil, models.NewInternalError(err)
	}
	if old != "" {
		_ = s.media.Delete(old)
	}
	return profile, nil
}
