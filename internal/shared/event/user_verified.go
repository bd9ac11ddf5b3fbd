package event

const UserVerifiedDestination string = "user_verified"
const UserVerifiedConsumerNotification string = "user_verified_notification"

// UserVerifiedMessage is published once a registration OTP has been
// confirmed and the account activated.
type UserVerifiedMessage struct {
	UserID     int64  `json:"user_id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	VerifiedAt int64  `json:"verified_at"`
}
