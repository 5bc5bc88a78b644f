package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrTeacherAccessOnly ErrCode = "TEACHER_ACCESS_ONLY"
	ErrStudentAccessOnly ErrCode = "STUDENT_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrClassNotFound   ErrCode = "CLASS_NOT_FOUND"
	ErrSessionNotFound ErrCode = "SESSION_NOT_FOUND"
	ErrConflict        ErrCode = "CONFLICT"
	ErrEmailTaken      ErrCode = "EMAIL_TAKEN"
	ErrCodeExhausted   ErrCode = "CLASS_CODE_EXHAUSTED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal    ErrCode = "INTERNAL_ERROR"
	ErrUnavailable ErrCode = "SERVICE_UNAVAILABLE"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email atau kata sandi salah."
	case ErrTokenRequired:
		return "Silakan login terlebih dahulu."
	case ErrTokenInvalid:
		return "Sesi login tidak valid."
	case ErrTokenExpired:
		return "Sesi login telah kedaluwarsa. Silakan login kembali."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "Anda tidak memiliki akses ke kelas atau sesi ini."
	case ErrTeacherAccessOnly:
		return "Hanya guru yang dapat melakukan tindakan ini."
	case ErrStudentAccessOnly:
		return "Hanya siswa yang dapat melakukan tindakan ini."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validasi gagal. Silakan periksa masukan Anda."
	case ErrInvalidID:
		return "Format ID tidak valid."
	case ErrInvalidPayload:
		return "Payload permintaan tidak valid."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Sumber daya tidak ditemukan."
	case ErrClassNotFound:
		return "Kelas tidak ditemukan."
	case ErrSessionNotFound:
		return "Sesi tidak ditemukan."
	case ErrConflict:
		return "Sumber daya sudah ada."
	case ErrEmailTaken:
		return "Email sudah terdaftar."
	case ErrCodeExhausted:
		return "Gagal membuat kode kelas unik. Silakan coba lagi."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Terlalu banyak permintaan token. Silakan coba lagi nanti."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Terjadi kesalahan server internal."
	case ErrUnavailable:
		return "Layanan sedang tidak tersedia. Silakan coba beberapa saat lagi."
	default:
		return "Terjadi kesalahan yang tidak terduga."
	}
}
