package enums

// BookingStatus tracks the lifecycle of a service booking.
type BookingStatus string

const (
	BookingStatusNew            BookingStatus = "new"
	BookingStatusPendingPayment BookingStatus = "pending_payment"
	BookingStatusConfirmed      BookingStatus = "confirmed"
	BookingStatusCancelled      BookingStatus = "cancelled"
	BookingStatusExpired        BookingStatus = "expired"
	BookingStatusInProgress     BookingStatus = "in_progress"
	BookingStatusCompleted      BookingStatus = "completed"
)

var validBookingStatuses = []BookingStatus{
	BookingStatusNew,
	BookingStatusPendingPayment,
	BookingStatusConfirmed,
	BookingStatusCancelled,
	BookingStatusExpired,
	BookingStatusInProgress,
	BookingStatusCompleted,
}

// String implements fmt.Stringer.
func (b BookingStatus) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BookingStatus.
func (b BookingStatus) IsValid() bool {
	for _, candidate := range validBookingStatuses {
		if candidate == b {
			return true
		}
	}
	return false
}
