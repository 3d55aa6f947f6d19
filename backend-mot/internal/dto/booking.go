package dto

// CreateBookingRequest is the body of POST /bookings. The customer is taken
// from the token and the status always starts as Pending.
type CreateBookingRequest struct {
	Name             string `json:"name" binding:"required,max=200"`
	Vehicle          string `json:"vehicle" binding:"max=200"`
	VehicleMake      string `json:"vehicle_make" binding:"max=100"`
	VehicleModel     string `json:"vehicle_model" binding:"max=100"`
	VehicleYear      int    `json:"vehicle_year"`
	VehicleRegNumber string `json:"vehicle_reg_number" binding:"required,max=20"`
	EngineSize       string `json:"engine_size" binding:"max=20"`
	FuelType         string `json:"fuel_type" binding:"max=50"`
	Transmission     string `json:"transmission" binding:"max=50"`
	Mileage          int    `json:"mileage"`
	AdditionalNotes  string `json:"additional_notes" binding:"max=2000"`
	SelectedGarage   string `json:"selected_garage" binding:"max=200"`
	Date             string `json:"date" binding:"required"`
	Time             string `json:"time" binding:"required"`
}

// UpdateBookingRequest is the body of PATCH /bookings/:reg. Nil fields are
// left unchanged. Status changes go through PUT /bookings/:reg/status.
type UpdateBookingRequest struct {
	Name             *string `json:"name" binding:"omitempty,min=1,max=200"`
	Vehicle          *string `json:"vehicle" binding:"omitempty,max=200"`
	VehicleMake      *string `json:"vehicle_make" binding:"omitempty,max=100"`
	VehicleModel     *string `json:"vehicle_model" binding:"omitempty,max=100"`
	VehicleYear      *int    `json:"vehicle_year"`
	VehicleRegNumber *string `json:"vehicle_reg_number" binding:"omitempty,max=20"`
	EngineSize       *string `json:"engine_size" binding:"omitempty,max=20"`
	FuelType         *string `json:"fuel_type" binding:"omitempty,max=50"`
	Transmission     *string `json:"transmission" binding:"omitempty,max=50"`
	Mileage          *int    `json:"mileage"`
	AdditionalNotes  *string `json:"additional_notes" binding:"omitempty,max=2000"`
	SelectedGarage   *string `json:"selected_garage" binding:"omitempty,max=200"`
	Date             *string `json:"date"`
	Time             *string `json:"time"`
}

// BookingListQuery is the query string of GET /bookings
type BookingListQuery struct {
	Skip   int    `form:"skip" binding:"min=0"`
	Limit  int    `form:"limit" binding:"min=0"`
	Status string `form:"status"`
}

// UpdateBookingStatusRequest is the body of PUT /bookings/:reg/status
type UpdateBookingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
