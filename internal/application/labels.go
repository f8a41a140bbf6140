package application

import "github.com/bnema/packybar/internal/domain"

// labelSet holds the localized fixed strings for the read-only menu fields.
type labelSet struct {
	StatusOK         string
	StatusNoData     string
	StatusError      string
	StatusNoToken    string
	TitleNoData      string
	TitleError       string
	Daily            string
	Monthly          string
	Balance          string
	Requests         string
	Last30           string
	Last30Format     string
	LastUpdate       string
	CyclePrefix      string
	CycleDaysLeft    string
	RenewalSoon      string
	RenewalExpired   string
	TokenExpiry      string
	TokenExpired     string
	Missing          string
	RemainingWrapped string
}

var labelsEN = labelSet{
	StatusOK:         "Status: ok",
	StatusNoData:     "Status: no data",
	StatusError:      "Status: error - %s",
	StatusNoToken:    "Status: no credential",
	TitleNoData:      "no data",
	TitleError:       "error",
	Daily:            "Daily",
	Monthly:          "Monthly",
	Balance:          "Balance",
	Requests:         "Requests",
	Last30:           "Last 30d",
	Last30Format:     "total %d, avg %d",
	LastUpdate:       "Updated",
	CyclePrefix:      "Cycle",
	CycleDaysLeft:    "%d days left",
	RenewalSoon:      "expiring soon, %d days",
	RenewalExpired:   "already expired",
	TokenExpiry:      "Token expires in %s",
	TokenExpired:     "Token expired",
	Missing:          "-",
	RemainingWrapped: "left %s",
}

var labelsZH = labelSet{
	StatusOK:         "状态：正常",
	StatusNoData:     "状态：无数据",
	StatusError:      "状态：错误 - %s",
	StatusNoToken:    "状态：未设置 Token",
	TitleNoData:      "无数据",
	TitleError:       "错误",
	Daily:            "每日",
	Monthly:          "每月",
	Balance:          "余额",
	Requests:         "请求次数",
	Last30:           "近30日",
	Last30Format:     "总 %d，日均 %d",
	LastUpdate:       "上次更新",
	CyclePrefix:      "周期",
	CycleDaysLeft:    "剩余 %d 天",
	RenewalSoon:      "即将到期，剩 %d 天",
	RenewalExpired:   "已到期",
	TokenExpiry:      "Token 将于 %s 后过期",
	TokenExpired:     "Token 已过期",
	Missing:          "-",
	RemainingWrapped: "剩余 %s",
}

func labelsFor(language string) labelSet {
	if language == domain.LanguageZH {
		return labelsZH
	}
	return labelsEN
}
