package domain

// MergeDetails combines a list-endpoint summary with the detail-endpoint
// payload for the same trip. The result starts from the summary; each field
// the detail payload carries replaces the summary's value. A zero value in
// detail is treated as "not sent" because the wire format cannot tell the two
// apart.
//
// Field rules:
//
//	ID, Name, Destination, Description      detail overrides summary
//	StartDate, EndDate, CreatedAt, UpdatedAt detail overrides summary
//	TripType, Icon, IconColor, Tags          detail overrides summary
//	InvitePermission, Owner, Stages          detail overrides summary
//	Participants                             detail overrides summary, wholesale
//	StageCount, ParticipantsCount            summary-only, preserved unless detail sends them
func MergeDetails(summary, detail Trip) Trip {
	m := summary

	if detail.ID != 0 {
		m.ID = detail.ID
	}
	if detail.Name != "" {
		m.Name = detail.Name
	}
	if detail.Destination != "" {
		m.Destination = detail.Destination
	}
	if detail.Description != "" {
		m.Description = detail.Description
	}
	if detail.StartDate != nil {
		m.StartDate = detail.StartDate
	}
	if detail.EndDate != nil {
		m.EndDate = detail.EndDate
	}
	if detail.TripType != "" {
		m.TripType = detail.TripType
	}
	if detail.Icon != "" {
		m.Icon = detail.Icon
	}
	if detail.IconColor != "" {
		m.IconColor = detail.IconColor
	}
	if detail.Tags != nil {
		m.Tags = detail.Tags
	}
	if detail.InvitePermission != "" {
		m.InvitePermission = detail.InvitePermission
	}
	if detail.Owner != nil {
		m.Owner = detail.Owner
	}
	if detail.Participants != nil {
		m.Participants = detail.Participants
	}
	if detail.Stages != nil {
		m.Stages = detail.Stages
	}
	if detail.StageCount != nil {
		m.StageCount = detail.StageCount
	}
	if detail.ParticipantsCount != nil {
		m.ParticipantsCount = detail.ParticipantsCount
	}
	if detail.CreatedAt != nil {
		m.CreatedAt = detail.CreatedAt
	}
	if detail.UpdatedAt != nil {
		m.UpdatedAt = detail.UpdatedAt
	}
	return m
}
