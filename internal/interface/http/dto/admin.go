package dto

// DeliveryChargeRequest 运费询价，cod_amount为最小货币单位
type DeliveryChargeRequest struct {
	Weight    float64 `json:"weight" binding:"required,gt=0" example:"1.5"`
	District  string  `json:"district" binding:"required" example:"Dhaka"`
	CODAmount int64   `json:"cod_amount" binding:"min=0" example:"119800"`
}

// CancelConsignmentRequest 取消快递单
type CancelConsignmentRequest struct {
	Reason string `json:"reason" binding:"max=200" example:"客户取消"`
}

// UpdateSettingsRequest 修改站点设置
type UpdateSettingsRequest struct {
	Settings map[string]string `json:"settings" binding:"required"`
}

// TeamMemberRequest 团队成员
type TeamMemberRequest struct {
	Name     string `json:"name" binding:"required,max=100" example:"Karim"`
	Role     string `json:"role" binding:"max=100" example:"Editor"`
	Bio      string `json:"bio" binding:"max=1000"`
	ImageURL string `json:"image_url" binding:"omitempty,url"`
	Position int    `json:"position" binding:"min=0"`
}
