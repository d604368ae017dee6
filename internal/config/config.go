package config

type Config struct {
	Journal  JournalConf  `json:"journal"`
	Digest   DigestConf   `json:"digest"`
	Telegram TelegramConf `json:"telegram"`
}

type JournalConf struct {
	ToleranceR      float64 `json:"tolerance_r"`       // 提前离场判定容差（R），默认0.1
	DefaultPageSize int     `json:"default_page_size"` // 列表默认分页大小，默认20
}

type DigestConf struct {
	Enabled bool   `json:"enabled"` // 是否启用风控日报
	Cron    string `json:"cron"`    // 日报执行时间，默认 "0 21 * * *"
}

type TelegramConf struct {
	Enabled bool   `json:"enabled"`
	Token   string `json:"token"`
	ChatID  string `json:"chat_id"`
}
