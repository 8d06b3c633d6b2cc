package model

// ==== Roles ====
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// ==== Gender ====
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// ==== Gender Preference ====
const (
	GenderPrefAny        = "any"
	GenderPrefFemaleOnly = "female_only"
)

// ==== Ride Request Status ====
const (
	RequestStatusPending   = "pending"
	RequestStatusCancelled = "cancelled"
)

// ==== Member Removal Reason ====
const (
	RemovalReasonSelf  = "self"
	RemovalReasonAdmin = "admin"
)

// ==== Notification Category ====
const (
	NotifyMemberJoined    = "member_joined"
	NotifyRemovedFromRide = "removed_from_ride"
	NotifyMemberLeft      = "member_left"
	NotifyRideCancelled   = "ride_cancelled"
)

// ==== Group Event Type ====
const (
	EventGroupCreated  = "GROUP_CREATED"
	EventMemberJoined  = "MEMBER_JOINED"
	EventMemberRemoved = "MEMBER_REMOVED"
	EventGroupResized  = "GROUP_RESIZED"
	EventRideCancelled = "RIDE_CANCELLED"
	EventGroupDeleted  = "GROUP_DELETED"
)

// ==== Ride Status Flags (admin tracking) ====
const (
	StatusFlagFirstCall      = "first_call"
	StatusFlagFollowUp       = "follow_up"
	StatusFlagPayment        = "payment"
	StatusFlagAdvancePayment = "advance_payment"
)
