package event

const AuthCodeIssuedDestination string = "auth_code_issued"
const AuthCodeIssuedConsumerNotification string = "auth_code_issued_notification"

type AuthCodeIssuedMessage struct {
	UserID      int64  `json:"user_id"`
	PhoneNumber string `json:"phone_number"`
	Code        string `json:"code"`
	Purpose     string `json:"purpose"`
}
