package account

import (
	"strconv"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

func domainCode(err error) string {
	if err == nil {
		return ""
	}
	if code := domain.Code(err); code != "" {
		return code
	}
	return "non_domain_error"
}

func idString(id int64) string {
	return strconv.FormatInt(id, 10)
}
