// Package domain models rainwater-harvesting and groundwater-recharge
// feasibility for a building site. It is the pure numeric core of the
// service: every function here is a stateless transformation with no I/O,
// safe for concurrent use.
//
// # Inputs
//
// A site request carries location, roof geometry, and soil composition.
// Numeric fields are lenient: JSON numbers and numeric strings both parse.
// The two failure modes are deliberately distinct:
//
//	absent field     → documented default (clay/sand/silt 30/40/30,
//	                   elevation 100 m, infiltration 10 mm/hr,
//	                   runoff coefficient 0.8, available space = roof area)
//	unparsable field → 0.0 plus a CoercionWarning
//
// The asymmetry comes from the training pipeline: models were fit on data
// where only truly missing columns were median-imputed. Unifying the two
// paths would silently shift the feature distribution, so both are kept and
// tested. Only roof_area_m2 is hard-required; everything else degrades.
//
// # Derived features
//
// Seven scalars are appended to the raw inputs before model inference. The
// +1 and +0.1 offsets are divisor guards and must not be replaced with a
// generic epsilon:
//
//	rainfall_intensity  = max_daily_rainfall_mm / (rainy_days_count + 1)
//	soil_water_capacity = clay*0.4 + silt*0.3 + sand*0.1
//	roof_efficiency     = roof_area / (available_space + 1)
//	climate_aridity     = evaporation / (annual_rainfall/365 + 0.1)
//	harvest_potential   = rainfall * roof_area * runoff_coeff / 1000
//	temperature_factor  = avg_temp / 30
//	elevation_factor    = elevation / 1000
//
// # Water balance
//
// Annual harvest in liters is roof_area * (rainfall_mm/1000) * runoff * 1000.
// Monthly volumes follow a fixed seasonal distribution (typical Indian
// monsoon, shares sum to 1.00): 1/1/2/3/5/15/25/20/15/8/3/2 percent from
// January to December. Storage per month is the usage deficit (800 L/day
// household draw, non-leap month lengths) buffered by 20% for dry spells;
// surplus months require none. The single tank recommendation is the lesser
// of 30% of the annual harvest and 90 days of usage (72,000 L).
//
// # Recharge metrics
//
// Evaporation uses a simplified Penman-style estimate floored at 0.1 mm/day;
// infiltration potential saturates at 2000 mm of annual rainfall. Recharge
// efficiency is intentionally unclamped and goes negative when evaporation
// exceeds 10 mm/day. Seasons: Monsoon Jun-Sep (1.5), Pre-Monsoon Mar-May
// (0.8), Post-Monsoon Oct-Nov (1.2), Winter otherwise (0.5). Monsoon
// intensity bands annual rainfall at >2000/>1500/>1000/>500 mm.
//
// # Model boundary
//
// The feasibility classifier, score regressor, and structure recommender are
// external collaborators consuming an ordered numeric vector. EncodeFeatures
// one-hot encodes roof_type and aligns columns to the trained schema, filling
// unknown columns with zero, so a model artifact trained with extra roof
// types keeps working.
package domain
